// Package log configures the zerolog logger shared by the pipeline stages.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger at the level named by STUDENTDW_LOG_LEVEL
// (default info), stamped with the component name.
func New(component string) zerolog.Logger {
	level := zerolog.InfoLevel
	if v := os.Getenv("STUDENTDW_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}

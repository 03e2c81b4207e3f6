// Command analyze prints the descriptive-statistics report over the
// warehouse and renders the chart artifacts.
package main

import (
	"context"
	"os"

	"github.com/edulytics/studentdw/analysis"
	"github.com/edulytics/studentdw/config"
	"github.com/edulytics/studentdw/pkg/log"
	"github.com/edulytics/studentdw/warehouse"
)

func main() {
	logger := log.New("analyze")

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	w, err := warehouse.Open(cfg.Data.Warehouse)
	if err != nil {
		logger.Fatal().Err(err).Msg("open warehouse")
	}
	defer func() { _ = w.Close() }()

	if err := analysis.Run(context.Background(), w, cfg.Charts.Dir, os.Stdout, logger); err != nil {
		logger.Fatal().Err(err).Msg("analysis failed")
	}
}

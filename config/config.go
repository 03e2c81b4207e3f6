// Package config loads the pipeline configuration. Every filesystem path
// and tunable the stages use comes from here rather than from constants
// scattered through the code.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that selects the config file.
const EnvConfigPath = "STUDENTDW_CONFIG"

// Config holds all paths and tunables for the four pipeline stages.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Charts    ChartsConfig    `yaml:"charts"`
	Models    ModelsConfig    `yaml:"models"`
	Generator GeneratorConfig `yaml:"generator"`
	Training  TrainingConfig  `yaml:"training"`
}

// DataConfig holds the data artifact paths.
type DataConfig struct {
	Raw         string `yaml:"raw"`
	Warehouse   string `yaml:"warehouse"`
	Predictions string `yaml:"predictions"`
}

// ChartsConfig holds the chart output directory.
type ChartsConfig struct {
	Dir string `yaml:"dir"`
}

// ModelsConfig holds the model artifact directory.
type ModelsConfig struct {
	Dir string `yaml:"dir"`
}

// GeneratorConfig holds synthetic dataset tunables.
type GeneratorConfig struct {
	Students int    `yaml:"students"`
	Seed     uint64 `yaml:"seed"`
}

// TrainingConfig holds classifier tunables.
type TrainingConfig struct {
	Seed         uint64  `yaml:"seed"`
	TestFraction float64 `yaml:"test_fraction"`
	MaxIter      int     `yaml:"max_iter"`
	Threshold    float64 `yaml:"threshold"`
}

// Default returns the configuration matching the repository's standard layout.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Raw:         "data/student_performance.csv",
			Warehouse:   "data/student_dw.db",
			Predictions: "data/predictions.csv",
		},
		Charts: ChartsConfig{Dir: "visualizations"},
		Models: ModelsConfig{Dir: "models"},
		Generator: GeneratorConfig{
			Students: 248,
			Seed:     42,
		},
		Training: TrainingConfig{
			Seed:         42,
			TestFraction: 0.2,
			MaxIter:      1000,
			Threshold:    0.5,
		},
	}
}

// Load reads a YAML config file, applying defaults for absent fields.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// FromEnv loads a .env file if present and resolves the config: the file
// named by STUDENTDW_CONFIG when set, defaults otherwise.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()

	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}
	return Default(), nil
}

// Command predict trains the at-risk classifier, scores every student
// in the warehouse and persists the model artifacts.
package main

import (
	"context"
	"os"

	"github.com/edulytics/studentdw/config"
	"github.com/edulytics/studentdw/pkg/log"
	"github.com/edulytics/studentdw/predict"
	"github.com/edulytics/studentdw/warehouse"
)

func main() {
	logger := log.New("predict")

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	w, err := warehouse.Open(cfg.Data.Warehouse)
	if err != nil {
		logger.Fatal().Err(err).Msg("open warehouse")
	}
	defer func() { _ = w.Close() }()

	opts := predict.Options{
		Seed:         cfg.Training.Seed,
		TestFraction: cfg.Training.TestFraction,
		MaxIter:      cfg.Training.MaxIter,
		Threshold:    cfg.Training.Threshold,
	}

	err = predict.Run(context.Background(), w, opts, cfg.Data.Predictions, cfg.Models.Dir, os.Stdout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("prediction failed")
	}
}

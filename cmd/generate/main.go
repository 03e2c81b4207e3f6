// Command generate produces the synthetic student-performance dataset
// that feeds the ETL pipeline.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edulytics/studentdw/config"
	"github.com/edulytics/studentdw/dataset"
	"github.com/edulytics/studentdw/pkg/log"
)

func main() {
	logger := log.New("generate")

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	gen, err := dataset.NewGenerator(cfg.Generator.Seed)
	if err != nil {
		logger.Fatal().Err(err).Msg("create generator")
	}

	records, err := gen.Generate(cfg.Generator.Students)
	if err != nil {
		logger.Fatal().Err(err).Msg("generate dataset")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Data.Raw), 0o755); err != nil {
		logger.Fatal().Err(err).Msg("create data directory")
	}
	if err := dataset.WriteCSV(cfg.Data.Raw, records); err != nil {
		logger.Fatal().Err(err).Msg("write dataset")
	}

	logger.Info().
		Int("students", len(records)).
		Uint64("seed", cfg.Generator.Seed).
		Str("path", cfg.Data.Raw).
		Msg("dataset generated")

	printSummary(records)
}

func printSummary(records []dataset.Record) {
	deptCounts := make(map[string]int)
	passed := 0
	var attSum, midSum, gradeSum float64

	for i := range records {
		r := &records[i]
		deptCounts[r.Department]++
		if r.Status == "Pass" {
			passed++
		}
		attSum += r.Attendance
		midSum += r.Midterm
		gradeSum += r.FinalGrade
	}

	n := float64(len(records))
	fmt.Printf("\nDepartment distribution:\n")
	for dept, count := range deptCounts {
		fmt.Printf("  %-12s %d\n", dept, count)
	}
	fmt.Printf("\nAverage metrics: attendance %.2f, midterm %.2f, final grade %.2f\n",
		attSum/n, midSum/n, gradeSum/n)
	fmt.Printf("Pass/Fail: %d / %d\n", passed, len(records)-passed)
}

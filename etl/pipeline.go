package etl

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edulytics/studentdw/warehouse"
)

// Report summarizes one pipeline run: the per-stage row counts that are
// the pipeline's externally observable success signal. The load counts
// are verified against the warehouse table cardinalities before the run
// is reported successful.
type Report struct {
	RunID       string
	Extracted   int
	Transformed int
	Loaded      warehouse.LoadResult
}

// Pipeline wires the extract, transform and load stages together.
type Pipeline struct {
	sourcePath    string
	warehousePath string
	logger        zerolog.Logger
}

// NewPipeline creates a pipeline reading sourcePath and loading into the
// warehouse file at warehousePath.
func NewPipeline(sourcePath, warehousePath string, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		sourcePath:    sourcePath,
		warehousePath: warehousePath,
		logger:        logger,
	}
}

// Run executes one full ETL pass. Any stage error aborts the run; there
// is no partial-success or resume behavior.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := p.logger.With().Str("run_id", report.RunID).Logger()

	logger.Info().Str("source", p.sourcePath).Msg("extracting raw records")
	records, err := Extract(p.sourcePath)
	if err != nil {
		return nil, errors.Wrap(err, "extract")
	}
	report.Extracted = len(records)
	logger.Info().Int("rows", report.Extracted).Msg("extract complete")

	rows, err := Transform(records)
	if err != nil {
		return nil, errors.Wrap(err, "transform")
	}
	report.Transformed = len(rows)
	logger.Info().Int("rows", report.Transformed).Msg("transform complete")

	w, err := warehouse.Open(p.warehousePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = w.Close() }()

	report.Loaded, err = Load(ctx, w, rows, logger)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}

	if err := p.verifyCounts(ctx, w, report.Loaded); err != nil {
		return nil, err
	}

	logger.Info().
		Int("students", report.Loaded.Students).
		Int("departments", report.Loaded.Departments).
		Int("semesters", report.Loaded.Semesters).
		Int("facts", report.Loaded.Facts).
		Str("warehouse", p.warehousePath).
		Msg("load complete")

	return report, nil
}

// verifyCounts cross-checks the reported load counts against the actual
// table cardinalities.
func (p *Pipeline) verifyCounts(ctx context.Context, w *warehouse.Warehouse, res warehouse.LoadResult) error {
	for _, check := range []struct {
		table string
		want  int
	}{
		{warehouse.TableStudent, res.Students},
		{warehouse.TableDepartment, res.Departments},
		{warehouse.TableSemester, res.Semesters},
		{warehouse.TablePerformance, res.Facts},
	} {
		got, err := w.TableCount(ctx, check.table)
		if err != nil {
			return err
		}
		if got != check.want {
			return errors.Newf("load verification failed: %s has %d rows, reported %d",
				check.table, got, check.want)
		}
	}
	return nil
}

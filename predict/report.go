package predict

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"

	"github.com/edulytics/studentdw/ml"
	"github.com/edulytics/studentdw/warehouse"
)

// Model artifact file names, relative to the models directory.
const (
	ModelFile  = "logistic_regression.gob"
	ScalerFile = "scaler.gob"
)

const topAtRisk = 10

// Run executes the full prediction pass: train, evaluate, score every
// student, write the predictions file and persist the fitted artifacts.
func Run(ctx context.Context, w *warehouse.Warehouse, opts Options, predictionsPath, modelsDir string, out io.Writer, logger zerolog.Logger) error {
	rows, err := w.TrainingRows(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("rows", len(rows)).Msg("loaded training rows")

	model, scaler, eval, err := Train(rows, opts)
	if err != nil {
		return err
	}
	logger.Info().
		Int("train", eval.TrainSize).
		Int("test", eval.TestSize).
		Int("iterations", model.NIter).
		Msg("model trained")

	printEvaluation(out, eval)

	preds, err := ScoreAll(model, scaler, rows, opts.Threshold)
	if err != nil {
		return err
	}
	printAtRisk(out, preds, opts.Threshold)

	if err := WriteCSV(predictionsPath, preds); err != nil {
		return err
	}
	logger.Info().Str("path", predictionsPath).Msg("predictions saved")

	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return err
	}
	if err := ml.Save(filepath.Join(modelsDir, ModelFile), model); err != nil {
		return err
	}
	if err := ml.Save(filepath.Join(modelsDir, ScalerFile), scaler); err != nil {
		return err
	}
	logger.Info().Str("dir", modelsDir).Msg("model artifacts saved")

	return nil
}

func heading(out io.Writer, text string) {
	fmt.Fprintln(out)
	color.New(color.FgCyan, color.Bold).Fprintln(out, text)
}

func printEvaluation(out io.Writer, eval *Evaluation) {
	heading(out, "MODEL PERFORMANCE EVALUATION")

	fmt.Fprintf(out, "  Training set: %d students, testing set: %d students\n", eval.TrainSize, eval.TestSize)
	fmt.Fprintf(out, "  Overall accuracy: %.2f%%\n", eval.Accuracy*100)
	fmt.Fprintf(out, "  ROC-AUC score: %.3f\n", eval.AUC)

	fmt.Fprintf(out, "\n  Confusion matrix (rows actual, columns predicted):\n")
	fmt.Fprintf(out, "                Fail    Pass\n")
	fmt.Fprintf(out, "    Fail     %6d  %6d\n", eval.Confusion[0][0], eval.Confusion[0][1])
	fmt.Fprintf(out, "    Pass     %6d  %6d\n", eval.Confusion[1][0], eval.Confusion[1][1])

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Class", "Precision", "Recall", "F1", "Support"})
	for _, row := range []struct {
		name string
		m    ml.ClassMetrics
	}{
		{"Fail", eval.Report.Fail},
		{"Pass", eval.Report.Pass},
	} {
		table.Append([]string{
			row.name,
			fmt.Sprintf("%.3f", row.m.Precision),
			fmt.Sprintf("%.3f", row.m.Recall),
			fmt.Sprintf("%.3f", row.m.F1),
			fmt.Sprintf("%d", row.m.Support),
		})
	}
	table.Render()

	fmt.Fprintf(out, "\n  Feature coefficients:\n")
	for _, c := range eval.Coefficients {
		direction := "decreases pass probability"
		if c.Value > 0 {
			direction = "increases pass probability"
		}
		fmt.Fprintf(out, "    %-20s %+.3f  (%s)\n", c.Feature, c.Value, direction)
	}
}

func printAtRisk(out io.Writer, preds []Prediction, threshold float64) {
	atRisk := AtRisk(preds)

	heading(out, "EARLY WARNING: AT-RISK STUDENT IDENTIFICATION")
	fmt.Fprintf(out, "  Students below %.0f%% pass probability: %d of %d (%.1f%%)\n",
		threshold*100, len(atRisk), len(preds), float64(len(atRisk))/float64(len(preds))*100)

	if len(atRisk) == 0 {
		return
	}

	n := len(atRisk)
	if n > topAtRisk {
		n = topAtRisk
	}
	fmt.Fprintf(out, "\n  Top %d highest risk students:\n", n)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Student", "Attendance", "Midterm", "Pass Prob", "Risk Band"})
	for _, p := range atRisk[:n] {
		band := p.RiskBand
		if band == BandCritical {
			band = color.RedString(band)
		} else {
			band = color.YellowString(band)
		}
		table.Append([]string{
			fmt.Sprintf("Student %d", p.StudentID),
			fmt.Sprintf("%.1f%%", p.Attendance),
			fmt.Sprintf("%.1f", p.Midterm),
			fmt.Sprintf("%.1f%%", p.PassProbability*100),
			band,
		})
	}
	table.Render()
}

package analysis

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"

	"github.com/edulytics/studentdw/warehouse"
)

// Run executes the full analysis pass: correlations, significance
// tests, department aggregates, business insights and chart rendering,
// printing the report to out.
func Run(ctx context.Context, w *warehouse.Warehouse, chartDir string, out io.Writer, logger zerolog.Logger) error {
	rows, err := w.PerformanceRows(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("rows", len(rows)).Msg("loaded warehouse rows")

	cm, err := CorrelationMatrix(rows)
	if err != nil {
		return err
	}

	printCorrelations(out, FinalGradeCorrelations(cm))

	tests, err := SignificanceTests(rows)
	if err != nil {
		return err
	}
	printSignificance(out, tests)

	printDepartments(out, DepartmentAggregates(rows))
	printRiskCrosstab(out, RiskByDepartment(rows))
	printInsights(out, ComputeInsights(rows))

	if err := SaveCharts(rows, cm, chartDir); err != nil {
		return err
	}
	logger.Info().Str("dir", chartDir).Msg("charts saved")

	return nil
}

func heading(out io.Writer, text string) {
	fmt.Fprintln(out)
	color.New(color.FgCyan, color.Bold).Fprintln(out, text)
}

func printCorrelations(out io.Writer, correlations []Correlation) {
	heading(out, "CORRELATION WITH FINAL GRADE (sorted by strength)")

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Metric", "r", "Strength"})
	for _, c := range correlations {
		table.Append([]string{c.Metric, fmt.Sprintf("%+.3f", c.R), c.Strength})
	}
	table.Render()
}

func printSignificance(out io.Writer, tests []SignificanceTest) {
	heading(out, fmt.Sprintf("STATISTICAL SIGNIFICANCE TESTS (p < %.2f = significant)", SignificanceLevel))

	for _, t := range tests {
		verdict := color.RedString("not significant")
		if t.Significant {
			verdict = color.GreenString("SIGNIFICANT")
		}
		fmt.Fprintf(out, "  %s: r = %.3f, p = %.6f  %s\n", t.Name, t.R, t.P, verdict)
	}
}

func printDepartments(out io.Writer, stats []DepartmentStats) {
	heading(out, "DEPARTMENT-LEVEL ANALYSIS")

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Department", "Avg Grade", "Std Dev", "Min", "Max", "Avg Attendance", "Avg Midterm", "Students"})
	for _, d := range stats {
		table.Append([]string{
			d.Name,
			fmt.Sprintf("%.2f", d.MeanGrade),
			fmt.Sprintf("%.2f", d.StdGrade),
			fmt.Sprintf("%.2f", d.MinGrade),
			fmt.Sprintf("%.2f", d.MaxGrade),
			fmt.Sprintf("%.2f", d.MeanAttendance),
			fmt.Sprintf("%.2f", d.MeanMidterm),
			fmt.Sprintf("%d", d.Students),
		})
	}
	table.Render()
}

func printRiskCrosstab(out io.Writer, ct RiskCrosstab) {
	heading(out, "RISK DISTRIBUTION BY DEPARTMENT (%)")

	table := tablewriter.NewWriter(out)
	table.SetHeader(append([]string{"Department"}, ct.Categories...))
	for i, dept := range ct.Departments {
		row := []string{dept}
		for _, pct := range ct.Percent[i] {
			row = append(row, fmt.Sprintf("%.1f", pct))
		}
		table.Append(row)
	}
	table.Render()
}

func printInsights(out io.Writer, ins Insights) {
	heading(out, "ACTIONABLE BUSINESS INSIGHTS")

	fmt.Fprintf(out, "\n1. EARLY WARNING SYSTEM\n")
	fmt.Fprintf(out, "   %d students (%.1f%%) are HIGH RISK\n", ins.HighRiskCount, ins.HighRiskShare)
	fmt.Fprintf(out, "   Average attendance: %.1f%%, average midterm: %.1f\n",
		ins.HighRiskAvgAttendance, ins.HighRiskAvgMidterm)

	fmt.Fprintf(out, "\n2. ATTENDANCE IMPACT\n")
	fmt.Fprintf(out, "   <%.0f%% attendance: avg grade %.1f; >=%.0f%% attendance: avg grade %.1f\n",
		lowAttendanceCut, ins.LowAttendanceAvgGrade, highAttendanceCut, ins.HighAttendanceAvgGrade)
	fmt.Fprintf(out, "   Difference: %.1f points\n", ins.AttendanceGradeGap)

	fmt.Fprintf(out, "\n3. MIDTERM AS EARLY PREDICTOR\n")
	fmt.Fprintf(out, "   Students who failed midterm (<60): %d\n", ins.MidtermFailures)
	fmt.Fprintf(out, "   Of those, %.1f%% also failed the final exam\n", ins.MidtermToFinalFailRate)

	fmt.Fprintf(out, "\n4. DEPARTMENT-SPECIFIC NEEDS\n")
	if len(ins.Outliers) == 0 {
		fmt.Fprintf(out, "   All departments within the expected grade band\n")
	}
	for _, o := range ins.Outliers {
		if o.NeedsSupport {
			fmt.Fprintf(out, "   %s: avg = %.1f -> needs curriculum review and support\n", o.Name, o.MeanGrade)
		} else {
			fmt.Fprintf(out, "   %s: avg = %.1f -> share best practices\n", o.Name, o.MeanGrade)
		}
	}

	fmt.Fprintf(out, "\n5. BUSINESS VALUE / ROI\n")
	fmt.Fprintf(out, "   Current failing students: %d (%.1f%%)\n", ins.ROI.FailingStudents, ins.ROI.FailingShare)
	fmt.Fprintf(out, "   Potential students saved (40%% reduction): %d\n", ins.ROI.PotentialSaves)
	fmt.Fprintf(out, "   Financial impact: %.0f annually against %.0f system cost\n", ins.ROI.Savings, ins.ROI.SystemCost)
	fmt.Fprintf(out, "   ROI: %.1f%% in year 1\n", ins.ROI.ROIPercent)
}

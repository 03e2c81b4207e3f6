package analysis

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/edulytics/studentdw/dataset"
	sterrors "github.com/edulytics/studentdw/pkg/errors"
	"github.com/edulytics/studentdw/warehouse"
)

// Chart file names, relative to the charts directory.
const (
	HeatmapFile = "correlation_heatmap.png"
	ScatterFile = "attendance_vs_grade.png"
	RiskFile    = "risk_distribution.png"
)

// SaveCharts renders the three chart artifacts into dir. A rendering or
// write failure aborts with a wrapped I/O error.
func SaveCharts(rows []warehouse.PerformanceRow, cm *mat.SymDense, dir string) error {
	if len(rows) == 0 {
		return sterrors.NewModelError("SaveCharts", "no rows to chart", sterrors.ErrEmptyData)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create chart directory %s", dir)
	}

	if err := saveHeatmap(cm, filepath.Join(dir, HeatmapFile)); err != nil {
		return errors.Wrap(err, "correlation heatmap")
	}
	if err := saveScatter(rows, filepath.Join(dir, ScatterFile)); err != nil {
		return errors.Wrap(err, "attendance scatter")
	}
	if err := saveRiskBars(rows, filepath.Join(dir, RiskFile)); err != nil {
		return errors.Wrap(err, "risk distribution")
	}
	return nil
}

// correlationGrid adapts a correlation matrix to the heatmap's grid
// interface, flipping rows so the first metric appears at the top.
type correlationGrid struct {
	cm *mat.SymDense
}

func (g correlationGrid) Dims() (int, int) {
	n := g.cm.SymmetricDim()
	return n, n
}

func (g correlationGrid) Z(c, r int) float64 {
	n := g.cm.SymmetricDim()
	return g.cm.At(n-1-r, c)
}

func (g correlationGrid) X(c int) float64 { return float64(c) }
func (g correlationGrid) Y(r int) float64 { return float64(r) }

func saveHeatmap(cm *mat.SymDense, path string) error {
	p := plot.New()
	p.Title.Text = "Correlation Matrix - Student Performance Metrics"

	hm := plotter.NewHeatMap(correlationGrid{cm: cm}, moreland.SmoothBlueRed().Palette(255))
	hm.Min = -1
	hm.Max = 1
	p.Add(hm)

	n := cm.SymmetricDim()
	xTicks := make([]plot.Tick, n)
	yTicks := make([]plot.Tick, n)
	for i := 0; i < n; i++ {
		xTicks[i] = plot.Tick{Value: float64(i), Label: dataset.ScoreNames[i]}
		yTicks[i] = plot.Tick{Value: float64(i), Label: dataset.ScoreNames[n-1-i]}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Label.Rotation = -0.6
	p.X.Tick.Label.XAlign = -0.8

	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

func saveScatter(rows []warehouse.PerformanceRow, path string) error {
	p := plot.New()
	p.Title.Text = "Attendance vs Final Grade (with regression line)"
	p.X.Label.Text = "Attendance Rate (%)"
	p.Y.Label.Text = "Final Grade"

	byDept := make(map[string]plotter.XYs)
	for _, r := range rows {
		byDept[r.DepartmentName] = append(byDept[r.DepartmentName], plotter.XY{X: r.Attendance, Y: r.FinalGrade})
	}
	departments := make([]string, 0, len(byDept))
	for name := range byDept {
		departments = append(departments, name)
	}
	sort.Strings(departments)

	for i, name := range departments {
		scatter, err := plotter.NewScatter(byDept[name])
		if err != nil {
			return errors.Wrapf(err, "scatter for %s", name)
		}
		scatter.GlyphStyle.Color = plotutil.Color(i)
		p.Add(scatter)
		p.Legend.Add(name, scatter)
	}

	line, err := regressionLine(rows)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	line.Width = vg.Points(2)
	line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	p.Add(line)
	p.Legend.Add("Regression line", line)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

// regressionLine fits final grade on attendance over all rows and
// returns the fitted line spanning the observed attendance range.
func regressionLine(rows []warehouse.PerformanceRow) (*plotter.Line, error) {
	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = r.Attendance
		ys[i] = r.FinalGrade
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	minX, maxX := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
	}

	pts := plotter.XYs{
		{X: minX, Y: alpha + beta*minX},
		{X: maxX, Y: alpha + beta*maxX},
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "regression line")
	}
	return line, nil
}

func saveRiskBars(rows []warehouse.PerformanceRow, path string) error {
	p := plot.New()
	p.Title.Text = "Student Risk Distribution - Early Warning System"
	p.X.Label.Text = "Risk Category"
	p.Y.Label.Text = "Number of Students"

	crosstab := RiskByDepartment(rows)
	categories := crosstab.Categories
	counts := make([]int, len(categories))
	for _, r := range rows {
		for j, c := range categories {
			if r.RiskCategory == c {
				counts[j]++
			}
		}
	}

	barColors := []color.Color{
		color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}, // High Risk
		color.RGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff}, // Medium Risk
		color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}, // Low Risk
	}

	labels := plotter.XYLabels{}
	for i, n := range counts {
		bar, err := plotter.NewBarChart(plotter.Values{float64(n)}, vg.Points(50))
		if err != nil {
			return errors.Wrapf(err, "bar for %s", categories[i])
		}
		bar.Color = barColors[i]
		bar.XMin = float64(i)
		p.Add(bar)

		pct := float64(n) / float64(len(rows)) * 100
		labels.XYs = append(labels.XYs, plotter.XY{X: float64(i), Y: float64(n)})
		labels.Labels = append(labels.Labels, fmt.Sprintf("%d (%.1f%%)", n, pct))
	}

	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return errors.Wrap(err, "bar labels")
	}
	p.Add(lbl)
	p.NominalX(categories...)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

// Package analysis computes the descriptive-statistics report over the
// warehouse: metric correlations, significance tests, department-level
// aggregates, derived business insights and the chart artifacts.
package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/edulytics/studentdw/dataset"
	sterrors "github.com/edulytics/studentdw/pkg/errors"
	"github.com/edulytics/studentdw/warehouse"
)

// NumMetrics is the number of numeric metrics analyzed: the seven score
// columns in dataset.ScoreNames order.
const NumMetrics = 7

// SignificanceLevel is the p-value below which a correlation is
// reported as statistically significant.
const SignificanceLevel = 0.05

// metricMatrix lays the seven metrics of every row out as a dense
// (n x 7) matrix in dataset.ScoreNames order.
func metricMatrix(rows []warehouse.PerformanceRow) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, sterrors.NewModelError("metricMatrix", "no warehouse rows", sterrors.ErrEmptyData)
	}

	x := mat.NewDense(len(rows), NumMetrics, nil)
	for i, r := range rows {
		x.Set(i, 0, r.Attendance)
		x.Set(i, 1, r.Midterm)
		x.Set(i, 2, r.FinalScore)
		x.Set(i, 3, r.Projects)
		x.Set(i, 4, r.Quizzes)
		x.Set(i, 5, r.Assignments)
		x.Set(i, 6, r.FinalGrade)
	}
	return x, nil
}

// CorrelationMatrix computes the Pearson correlation matrix of the
// seven metrics.
func CorrelationMatrix(rows []warehouse.PerformanceRow) (*mat.SymDense, error) {
	x, err := metricMatrix(rows)
	if err != nil {
		return nil, err
	}
	cm := mat.NewSymDense(NumMetrics, nil)
	stat.CorrelationMatrix(cm, x, nil)
	return cm, nil
}

// Correlation is one metric's Pearson correlation against final_grade,
// annotated with its qualitative strength bucket.
type Correlation struct {
	Metric   string
	R        float64
	Strength string
}

// FinalGradeCorrelations extracts each metric's correlation with
// final_grade, sorted by signed value descending. final_grade itself is
// excluded.
func FinalGradeCorrelations(cm *mat.SymDense) []Correlation {
	const finalGradeIdx = NumMetrics - 1

	out := make([]Correlation, 0, NumMetrics-1)
	for i := 0; i < NumMetrics; i++ {
		if i == finalGradeIdx {
			continue
		}
		r := cm.At(i, finalGradeIdx)
		out = append(out, Correlation{
			Metric:   dataset.ScoreNames[i],
			R:        r,
			Strength: Strength(r),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].R > out[j].R
	})
	return out
}

// Strength buckets the absolute value of a correlation coefficient.
func Strength(r float64) string {
	switch abs := math.Abs(r); {
	case abs > 0.7:
		return "Very Strong"
	case abs > 0.5:
		return "Strong"
	case abs > 0.3:
		return "Moderate"
	case abs > 0.1:
		return "Weak"
	default:
		return "Very Weak"
	}
}

// SignificanceTest is a two-tailed Pearson correlation test between two
// metrics.
type SignificanceTest struct {
	Name        string
	R           float64
	P           float64
	Significant bool
}

// PearsonTest computes the Pearson correlation of x and y and its
// two-tailed p-value under the Student's-t distribution with n-2
// degrees of freedom.
func PearsonTest(name string, x, y []float64) (SignificanceTest, error) {
	if len(x) != len(y) {
		return SignificanceTest{}, sterrors.NewDimensionError("PearsonTest", len(x), len(y), 0)
	}
	n := len(x)
	if n < 3 {
		return SignificanceTest{}, sterrors.NewValueError("PearsonTest", "need at least 3 samples")
	}

	r := stat.Correlation(x, y, nil)

	var p float64
	if math.Abs(r) >= 1 {
		p = 0
	} else {
		t := r * math.Sqrt(float64(n-2)/(1-r*r))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
		p = 2 * dist.CDF(-math.Abs(t))
	}

	return SignificanceTest{
		Name:        name,
		R:           r,
		P:           p,
		Significant: p < SignificanceLevel,
	}, nil
}

// SignificanceTests runs the two fixed tests the report prints:
// attendance-vs-grade and midterm-vs-grade.
func SignificanceTests(rows []warehouse.PerformanceRow) ([]SignificanceTest, error) {
	attendance := make([]float64, len(rows))
	midterm := make([]float64, len(rows))
	grade := make([]float64, len(rows))
	for i, r := range rows {
		attendance[i] = r.Attendance
		midterm[i] = r.Midterm
		grade[i] = r.FinalGrade
	}

	att, err := PearsonTest("Attendance vs Final Grade", attendance, grade)
	if err != nil {
		return nil, err
	}
	mid, err := PearsonTest("Midterm vs Final Grade", midterm, grade)
	if err != nil {
		return nil, err
	}
	return []SignificanceTest{att, mid}, nil
}

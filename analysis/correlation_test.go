package analysis

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/edulytics/studentdw/warehouse"
)

const epsilon = 1e-9

// linearRows builds rows whose midterm equals the final grade and whose
// attendance runs against it, giving known correlation structure.
func linearRows(n int) []warehouse.PerformanceRow {
	rows := make([]warehouse.PerformanceRow, n)
	for i := range rows {
		v := 50 + float64(i)
		rows[i] = warehouse.PerformanceRow{
			StudentID:      i + 1,
			DepartmentName: "Business",
			Attendance:     100 - v,
			Midterm:        v,
			FinalScore:     v,
			Projects:       v,
			Quizzes:        v,
			Assignments:    v,
			TotalScore:     v,
			FinalGrade:     v,
		}
	}
	return rows
}

func TestCorrelationMatrix(t *testing.T) {
	cm, err := CorrelationMatrix(linearRows(20))
	if err != nil {
		t.Fatalf("CorrelationMatrix failed: %v", err)
	}

	if r, c := cm.Dims(); r != NumMetrics || c != NumMetrics {
		t.Fatalf("matrix dims = %dx%d, want %dx%d", r, c, NumMetrics, NumMetrics)
	}
	for i := 0; i < NumMetrics; i++ {
		if math.Abs(cm.At(i, i)-1) > epsilon {
			t.Errorf("diagonal [%d][%d] = %v, want 1", i, i, cm.At(i, i))
		}
	}
	// Midterm (1) tracks final grade (6) exactly, attendance (0) runs
	// against it.
	if got := cm.At(1, 6); math.Abs(got-1) > epsilon {
		t.Errorf("midterm-grade correlation = %v, want 1", got)
	}
	if got := cm.At(0, 6); math.Abs(got+1) > epsilon {
		t.Errorf("attendance-grade correlation = %v, want -1", got)
	}
	if math.Abs(cm.At(0, 6)-cm.At(6, 0)) > epsilon {
		t.Error("matrix is not symmetric")
	}
}

func TestCorrelationMatrix_Empty(t *testing.T) {
	if _, err := CorrelationMatrix(nil); err == nil {
		t.Error("expected error for no rows")
	}
}

func TestFinalGradeCorrelations(t *testing.T) {
	cm, err := CorrelationMatrix(linearRows(20))
	if err != nil {
		t.Fatalf("CorrelationMatrix failed: %v", err)
	}

	correlations := FinalGradeCorrelations(cm)
	if len(correlations) != NumMetrics-1 {
		t.Fatalf("got %d correlations, want %d", len(correlations), NumMetrics-1)
	}

	for _, c := range correlations {
		if c.Metric == "final_grade" {
			t.Error("final_grade correlated with itself in output")
		}
	}
	for i := 1; i < len(correlations); i++ {
		if correlations[i].R > correlations[i-1].R {
			t.Errorf("correlations not sorted descending at %d", i)
		}
	}
	// Attendance is the single negative correlate, so it sorts last.
	if last := correlations[len(correlations)-1]; last.Metric != "attendance_rate" {
		t.Errorf("last metric = %q, want attendance_rate", last.Metric)
	}
}

func TestStrength(t *testing.T) {
	tests := []struct {
		r    float64
		want string
	}{
		{0.95, "Very Strong"},
		{-0.8, "Very Strong"},
		{0.7, "Strong"},
		{0.6, "Strong"},
		{0.5, "Moderate"},
		{0.31, "Moderate"},
		{0.3, "Weak"},
		{-0.2, "Weak"},
		{0.1, "Very Weak"},
		{0, "Very Weak"},
	}
	for _, tt := range tests {
		if got := Strength(tt.r); got != tt.want {
			t.Errorf("Strength(%v) = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestPearsonTest_PerfectCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}

	st, err := PearsonTest("x vs y", x, y)
	if err != nil {
		t.Fatalf("PearsonTest failed: %v", err)
	}
	if math.Abs(st.R-1) > epsilon {
		t.Errorf("r = %v, want 1", st.R)
	}
	if st.P != 0 {
		t.Errorf("p = %v, want 0", st.P)
	}
	if !st.Significant {
		t.Error("perfect correlation not significant")
	}
}

func TestPearsonTest_WeakSample(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 1, 4, 3}

	st, err := PearsonTest("x vs y", x, y)
	if err != nil {
		t.Fatalf("PearsonTest failed: %v", err)
	}
	if math.Abs(st.R-0.6) > 1e-6 {
		t.Errorf("r = %v, want 0.6", st.R)
	}
	if st.P <= SignificanceLevel {
		t.Errorf("p = %v, want above %v for n=4", st.P, SignificanceLevel)
	}
	if st.Significant {
		t.Error("weak small-sample correlation reported significant")
	}
}

func TestPearsonTest_Validation(t *testing.T) {
	if _, err := PearsonTest("bad", []float64{1, 2}, []float64{1}); err == nil {
		t.Error("length mismatch accepted")
	}
	if _, err := PearsonTest("short", []float64{1, 2}, []float64{1, 2}); err == nil {
		t.Error("n < 3 accepted")
	}
}

func TestSignificanceTests(t *testing.T) {
	tests, err := SignificanceTests(linearRows(30))
	if err != nil {
		t.Fatalf("SignificanceTests failed: %v", err)
	}
	if len(tests) != 2 {
		t.Fatalf("got %d tests, want 2", len(tests))
	}
	if tests[0].Name != "Attendance vs Final Grade" || tests[1].Name != "Midterm vs Final Grade" {
		t.Errorf("unexpected test names: %q, %q", tests[0].Name, tests[1].Name)
	}
	// Both relationships are exactly linear in the fixture.
	if !tests[0].Significant || !tests[1].Significant {
		t.Error("exact linear relationships must be significant")
	}
	if tests[0].R > 0 {
		t.Errorf("attendance r = %v, want negative", tests[0].R)
	}
}

// mat.SymDense check of the grid ordering used by the heatmap.
func TestCorrelationGrid_FlipsRows(t *testing.T) {
	cm := mat.NewSymDense(NumMetrics, nil)
	for i := 0; i < NumMetrics; i++ {
		cm.SetSym(i, i, 1)
	}
	cm.SetSym(0, 1, 0.5)

	g := correlationGrid{cm: cm}
	cols, rowsN := g.Dims()
	if cols != NumMetrics || rowsN != NumMetrics {
		t.Fatalf("grid dims = %dx%d", cols, rowsN)
	}
	// Grid row 0 is the matrix's last row, so the first metric's
	// diagonal shows up at the top.
	if got := g.Z(0, NumMetrics-1); got != 1 {
		t.Errorf("Z(0, last) = %v, want diagonal 1", got)
	}
	if got := g.Z(1, NumMetrics-1); got != 0.5 {
		t.Errorf("Z(1, last) = %v, want 0.5", got)
	}
}

package predict

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/edulytics/studentdw/ml"
	"github.com/edulytics/studentdw/warehouse"
)

// Risk bands applied to students whose pass probability falls below the
// decision threshold.
const (
	BandCritical = "Critical"
	BandHigh     = "High"

	criticalCutoff = 0.3
)

// Prediction is one student's scored outcome.
type Prediction struct {
	StudentID       int
	Attendance      float64
	Midterm         float64
	Projects        float64
	Quizzes         float64
	Assignments     float64
	FinalGrade      float64
	PassProbability float64
	Predicted       int
	RiskBand        string
}

// ScoreAll scores every warehouse student against the threshold. The
// returned slice preserves the input row order; sub-threshold students
// carry a risk band of Critical (probability below 0.3) or High.
func ScoreAll(model *ml.LogisticRegression, scaler *ml.StandardScaler, rows []warehouse.TrainingRow, threshold float64) ([]Prediction, error) {
	x, _ := featureMatrix(rows)
	scaled, err := scaler.Transform(x)
	if err != nil {
		return nil, err
	}
	probs, err := model.PredictProba(scaled)
	if err != nil {
		return nil, err
	}

	preds := make([]Prediction, len(rows))
	for i, r := range rows {
		p := Prediction{
			StudentID:       r.StudentID,
			Attendance:      r.Attendance,
			Midterm:         r.Midterm,
			Projects:        r.Projects,
			Quizzes:         r.Quizzes,
			Assignments:     r.Assignments,
			FinalGrade:      r.FinalGrade,
			PassProbability: probs[i],
		}
		if probs[i] >= threshold {
			p.Predicted = 1
		} else if probs[i] < criticalCutoff {
			p.RiskBand = BandCritical
		} else {
			p.RiskBand = BandHigh
		}
		preds[i] = p
	}
	return preds, nil
}

// AtRisk filters the sub-threshold students, ranked ascending by pass
// probability (most at risk first).
func AtRisk(preds []Prediction) []Prediction {
	var out []Prediction
	for _, p := range preds {
		if p.Predicted == 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PassProbability < out[j].PassProbability
	})
	return out
}

// WriteCSV persists the full prediction table as a flat file.
func WriteCSV(path string, preds []Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	header := []string{
		"student_id", "attendance_rate", "midterm_score", "projects_score",
		"quizzes_avg", "assignments_avg", "final_grade",
		"pass_probability", "prediction", "risk_band",
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for _, p := range preds {
		row := []string{
			strconv.Itoa(p.StudentID),
			formatFloat(p.Attendance),
			formatFloat(p.Midterm),
			formatFloat(p.Projects),
			formatFloat(p.Quizzes),
			formatFloat(p.Assignments),
			formatFloat(p.FinalGrade),
			fmt.Sprintf("%.6f", p.PassProbability),
			strconv.Itoa(p.Predicted),
			p.RiskBand,
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "write prediction for student %d", p.StudentID)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package predict

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func TestScoreAll(t *testing.T) {
	rows := trainingRows(100)
	model, scaler, _, err := Train(rows, defaultOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	preds, err := ScoreAll(model, scaler, rows, 0.5)
	if err != nil {
		t.Fatalf("ScoreAll failed: %v", err)
	}
	if len(preds) != len(rows) {
		t.Fatalf("got %d predictions, want %d", len(preds), len(rows))
	}

	for i, p := range preds {
		if p.StudentID != rows[i].StudentID {
			t.Fatalf("prediction %d out of input order: %d vs %d", i, p.StudentID, rows[i].StudentID)
		}
		if p.PassProbability < 0 || p.PassProbability > 1 {
			t.Errorf("student %d probability = %v out of [0,1]", p.StudentID, p.PassProbability)
		}
		switch {
		case p.Predicted == 1:
			if p.PassProbability < 0.5 {
				t.Errorf("student %d predicted pass below threshold: %v", p.StudentID, p.PassProbability)
			}
			if p.RiskBand != "" {
				t.Errorf("predicted passer carries risk band %q", p.RiskBand)
			}
		case p.PassProbability < criticalCutoff:
			if p.RiskBand != BandCritical {
				t.Errorf("student %d band = %q, want %q at p=%v", p.StudentID, p.RiskBand, BandCritical, p.PassProbability)
			}
		default:
			if p.RiskBand != BandHigh {
				t.Errorf("student %d band = %q, want %q at p=%v", p.StudentID, p.RiskBand, BandHigh, p.PassProbability)
			}
		}
	}

	// The separated population splits cleanly around the threshold.
	passes := 0
	for _, p := range preds {
		passes += p.Predicted
	}
	if passes != 75 {
		t.Errorf("predicted passes = %d, want 75", passes)
	}
}

func TestAtRisk_SortedMostAtRiskFirst(t *testing.T) {
	rows := trainingRows(100)
	model, scaler, _, err := Train(rows, defaultOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	preds, err := ScoreAll(model, scaler, rows, 0.5)
	if err != nil {
		t.Fatalf("ScoreAll failed: %v", err)
	}

	atRisk := AtRisk(preds)
	if len(atRisk) != 25 {
		t.Fatalf("got %d at-risk students, want 25", len(atRisk))
	}
	for i, p := range atRisk {
		if p.Predicted != 0 {
			t.Errorf("at-risk entry %d is a predicted passer", i)
		}
		if i > 0 && p.PassProbability < atRisk[i-1].PassProbability {
			t.Errorf("at-risk list not ascending by probability at %d", i)
		}
	}
}

func TestAtRisk_Empty(t *testing.T) {
	preds := []Prediction{
		{StudentID: 1, Predicted: 1, PassProbability: 0.9},
	}
	if got := AtRisk(preds); len(got) != 0 {
		t.Errorf("got %d at-risk entries, want none", len(got))
	}
}

func TestWriteCSV(t *testing.T) {
	preds := []Prediction{
		{StudentID: 3, Attendance: 55.5, Midterm: 48, Projects: 50, Quizzes: 52,
			Assignments: 51, FinalGrade: 49.2, PassProbability: 0.214365,
			Predicted: 0, RiskBand: BandCritical},
		{StudentID: 7, Attendance: 88, Midterm: 82, Projects: 80, Quizzes: 85,
			Assignments: 84, FinalGrade: 83, PassProbability: 0.971204, Predicted: 1},
	}

	path := filepath.Join(t.TempDir(), "predictions.csv")
	if err := WriteCSV(path, preds); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open predictions: %v", err)
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read predictions: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(records))
	}
	if records[0][0] != "student_id" || records[0][9] != "risk_band" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "3" || records[1][7] != "0.214365" || records[1][9] != BandCritical {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[2][8] != "1" || records[2][9] != "" {
		t.Errorf("unexpected second row: %v", records[2])
	}
}

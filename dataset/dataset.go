// Package dataset defines the raw student-performance record, its CSV
// format, and the synthetic generator that produces it.
package dataset

import (
	"math"
)

// Columns is the required column set of the raw performance file, in
// file order. Extraction fails if any of these is absent.
var Columns = []string{
	"student_id",
	"student_name",
	"department",
	"enrollment_year",
	"gender",
	"attendance_rate",
	"midterm_score",
	"final_score",
	"projects_score",
	"quizzes_avg",
	"assignments_avg",
	"total_score",
	"final_grade",
	"semester",
	"academic_year",
	"last_updated",
	"status",
}

// Record is one raw per-student performance row. Missing score values
// are represented as NaN until the transform stage imputes them.
type Record struct {
	StudentID      int
	Name           string
	Department     string
	EnrollmentYear string
	Gender         string
	Attendance     float64
	Midterm        float64
	FinalScore     float64
	Projects       float64
	Quizzes        float64
	Assignments    float64
	TotalScore     float64
	FinalGrade     float64
	Semester       string
	AcademicYear   string
	LastUpdated    string
	Status         string
}

// Scores returns the seven score fields in canonical metric order:
// attendance_rate, midterm_score, final_score, projects_score,
// quizzes_avg, assignments_avg, final_grade.
func (r *Record) Scores() [7]float64 {
	return [7]float64{
		r.Attendance, r.Midterm, r.FinalScore,
		r.Projects, r.Quizzes, r.Assignments, r.FinalGrade,
	}
}

// SetScore writes the i-th score field, matching the Scores ordering.
func (r *Record) SetScore(i int, v float64) {
	switch i {
	case 0:
		r.Attendance = v
	case 1:
		r.Midterm = v
	case 2:
		r.FinalScore = v
	case 3:
		r.Projects = v
	case 4:
		r.Quizzes = v
	case 5:
		r.Assignments = v
	case 6:
		r.FinalGrade = v
	}
}

// ScoreNames are the metric names matching the Scores ordering.
var ScoreNames = []string{
	"attendance_rate",
	"midterm_score",
	"final_score",
	"projects_score",
	"quizzes_avg",
	"assignments_avg",
	"final_grade",
}

// Clamp limits v to the valid score range [0, 100]. NaN passes through
// so that missing values stay visible to the imputation step.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Min(100, math.Max(0, v))
}

package warehouse

import (
	"context"

	"github.com/cockroachdb/errors"
)

// PerformanceRow is one fact row joined with its student, department
// and semester dimensions, as consumed by the analysis layer. The
// dimension joins use the explicit surrogate foreign keys.
type PerformanceRow struct {
	StudentID       int
	StudentName     string
	EnrollmentYear  string
	DepartmentName  string
	SemesterName    string
	AcademicYear    string
	Attendance      float64
	Midterm         float64
	FinalScore      float64
	Projects        float64
	Quizzes         float64
	Assignments     float64
	TotalScore      float64
	FinalGrade      float64
	RiskCategory    string
	PerformanceTier string
}

// PerformanceRows returns every fact row with its dimensions resolved.
func (w *Warehouse) PerformanceRows(ctx context.Context) ([]PerformanceRow, error) {
	const query = `
		SELECT f.student_id, s.student_name, s.enrollment_year, d.department_name,
		       m.semester_name, m.academic_year,
		       f.attendance_rate, f.midterm_score, f.final_score, f.projects_score,
		       f.quizzes_avg, f.assignments_avg, f.total_score, f.final_grade,
		       f.risk_category, f.performance_tier
		FROM fact_student_performance f
		JOIN dim_student s ON f.student_id = s.student_id
		JOIN dim_department d ON f.department_id = d.department_id
		JOIN dim_semester m ON f.semester_id = m.semester_id
		ORDER BY f.student_id`

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query performance rows")
	}
	defer func() { _ = rows.Close() }()

	var out []PerformanceRow
	for rows.Next() {
		var r PerformanceRow
		if err := rows.Scan(
			&r.StudentID, &r.StudentName, &r.EnrollmentYear, &r.DepartmentName,
			&r.SemesterName, &r.AcademicYear,
			&r.Attendance, &r.Midterm, &r.FinalScore, &r.Projects,
			&r.Quizzes, &r.Assignments, &r.TotalScore, &r.FinalGrade,
			&r.RiskCategory, &r.PerformanceTier); err != nil {
			return nil, errors.Wrap(err, "scan performance row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate performance rows")
	}
	return out, nil
}

// TrainingRow is one fact row restricted to the early-indicator features
// plus the engineered pass label (final_grade >= 60).
type TrainingRow struct {
	StudentID   int
	Attendance  float64
	Midterm     float64
	Projects    float64
	Quizzes     float64
	Assignments float64
	FinalGrade  float64
	Pass        int
}

// TrainingRows returns the prediction layer's view of the fact table.
func (w *Warehouse) TrainingRows(ctx context.Context) ([]TrainingRow, error) {
	const query = `
		SELECT student_id, attendance_rate, midterm_score, projects_score,
		       quizzes_avg, assignments_avg, final_grade,
		       CASE WHEN final_grade >= 60 THEN 1 ELSE 0 END AS pass
		FROM fact_student_performance
		ORDER BY student_id`

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query training rows")
	}
	defer func() { _ = rows.Close() }()

	var out []TrainingRow
	for rows.Next() {
		var r TrainingRow
		if err := rows.Scan(&r.StudentID, &r.Attendance, &r.Midterm, &r.Projects,
			&r.Quizzes, &r.Assignments, &r.FinalGrade, &r.Pass); err != nil {
			return nil, errors.Wrap(err, "scan training row")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate training rows")
	}
	return out, nil
}

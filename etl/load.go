package etl

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edulytics/studentdw/warehouse"
)

// BuildSnapshot derives the warehouse snapshot from transformed rows:
// the distinct dimension tuples plus one fact row per input row. A
// duplicate student_id with conflicting attributes is logged and
// resolved last-write-wins.
func BuildSnapshot(rows []Row, logger zerolog.Logger) *warehouse.Snapshot {
	snap := &warehouse.Snapshot{}

	studentIdx := make(map[int]int)
	seenDept := make(map[string]bool)
	seenSem := make(map[string]bool)

	for i := range rows {
		r := &rows[i]

		student := warehouse.Student{
			StudentID:      r.StudentID,
			Name:           r.Name,
			EnrollmentYear: r.EnrollmentYear,
			Gender:         r.Gender,
			Status:         r.Status,
		}
		if j, ok := studentIdx[r.StudentID]; ok {
			if snap.Students[j] != student {
				logger.Warn().
					Int("student_id", r.StudentID).
					Msg("duplicate student with conflicting attributes, keeping last")
				snap.Students[j] = student
			}
		} else {
			studentIdx[r.StudentID] = len(snap.Students)
			snap.Students = append(snap.Students, student)
		}

		if !seenDept[r.Department] {
			seenDept[r.Department] = true
			snap.Departments = append(snap.Departments, warehouse.Department{
				Name: r.Department,
				Code: departmentCode(r.Department),
			})
		}

		if key := r.Semester + "\x00" + r.AcademicYear; !seenSem[key] {
			seenSem[key] = true
			snap.Semesters = append(snap.Semesters, warehouse.Semester{
				Name:         r.Semester,
				AcademicYear: r.AcademicYear,
			})
		}

		snap.Facts = append(snap.Facts, warehouse.Fact{
			StudentID:       r.StudentID,
			Department:      r.Department,
			Semester:        r.Semester,
			AcademicYear:    r.AcademicYear,
			Attendance:      r.Attendance,
			Midterm:         r.Midterm,
			FinalScore:      r.FinalScore,
			Projects:        r.Projects,
			Quizzes:         r.Quizzes,
			Assignments:     r.Assignments,
			TotalScore:      r.TotalScore,
			FinalGrade:      r.FinalGrade,
			RiskCategory:    r.RiskCategory,
			PerformanceTier: r.PerformanceTier,
			LastUpdated:     r.LastUpdated,
		})
	}

	return snap
}

// Load creates the star schema if absent and replaces all warehouse data
// with the transformed rows.
func Load(ctx context.Context, w *warehouse.Warehouse, rows []Row, logger zerolog.Logger) (warehouse.LoadResult, error) {
	if err := w.CreateSchema(ctx); err != nil {
		return warehouse.LoadResult{}, err
	}
	return w.Replace(ctx, BuildSnapshot(rows, logger))
}

// departmentCode derives the 3-letter code from the first three
// characters of the department name, uppercased.
func departmentCode(name string) string {
	runes := []rune(name)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}

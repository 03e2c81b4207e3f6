package warehouse_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sterrors "github.com/edulytics/studentdw/pkg/errors"
	"github.com/edulytics/studentdw/warehouse"
)

func openTestWarehouse(t *testing.T) *warehouse.Warehouse {
	t.Helper()
	w, err := warehouse.Open(filepath.Join(t.TempDir(), "test_dw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.CreateSchema(context.Background()))
	return w
}

func testSnapshot() *warehouse.Snapshot {
	return &warehouse.Snapshot{
		Students: []warehouse.Student{
			{StudentID: 1, Name: "Student_1", EnrollmentYear: "2022", Gender: "F", Status: "Pass"},
			{StudentID: 2, Name: "Student_2", EnrollmentYear: "2023", Gender: "M", Status: "Fail"},
			{StudentID: 3, Name: "Student_3", EnrollmentYear: "2023", Gender: "F", Status: "Pass"},
		},
		Departments: []warehouse.Department{
			{Name: "Business", Code: "BUS"},
			{Name: "Engineering", Code: "ENG"},
		},
		Semesters: []warehouse.Semester{
			{Name: "Fall 2024", AcademicYear: "2024/2025"},
		},
		Facts: []warehouse.Fact{
			{StudentID: 1, Department: "Business", Semester: "Fall 2024", AcademicYear: "2024/2025",
				Attendance: 88, Midterm: 75, FinalScore: 72, Projects: 70, Quizzes: 74,
				Assignments: 80, TotalScore: 76.1, FinalGrade: 74,
				RiskCategory: "Low Risk", PerformanceTier: "Good", LastUpdated: "2025-01-15"},
			{StudentID: 2, Department: "Engineering", Semester: "Fall 2024", AcademicYear: "2024/2025",
				Attendance: 52, Midterm: 48, FinalScore: 50, Projects: 44, Quizzes: 51,
				Assignments: 47, TotalScore: 48.6, FinalGrade: 49,
				RiskCategory: "High Risk", PerformanceTier: "Failing", LastUpdated: "2025-01-15"},
			{StudentID: 3, Department: "Engineering", Semester: "Fall 2024", AcademicYear: "2024/2025",
				Attendance: 91, Midterm: 84, FinalScore: 81, Projects: 79, Quizzes: 83,
				Assignments: 85, TotalScore: 82.9, FinalGrade: 83,
				RiskCategory: "Low Risk", PerformanceTier: "Excellent", LastUpdated: "2025-01-15"},
		},
	}
}

func TestReplace_WritesAllTables(t *testing.T) {
	ctx := context.Background()
	w := openTestWarehouse(t)

	res, err := w.Replace(ctx, testSnapshot())
	require.NoError(t, err)

	assert.Equal(t, warehouse.LoadResult{Students: 3, Departments: 2, Semesters: 1, Facts: 3}, res)

	for _, check := range []struct {
		table string
		want  int
	}{
		{warehouse.TableStudent, 3},
		{warehouse.TableDepartment, 2},
		{warehouse.TableSemester, 1},
		{warehouse.TablePerformance, 3},
	} {
		n, err := w.TableCount(ctx, check.table)
		require.NoError(t, err)
		assert.Equal(t, check.want, n, check.table)
	}
}

func TestReplace_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	w := openTestWarehouse(t)
	snap := testSnapshot()

	_, err := w.Replace(ctx, snap)
	require.NoError(t, err)
	first, err := w.PerformanceRows(ctx)
	require.NoError(t, err)

	_, err = w.Replace(ctx, snap)
	require.NoError(t, err)
	second, err := w.PerformanceRows(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second, "repeated loads must yield identical contents")
}

func TestReplace_UnresolvedDepartmentIsIntegrityError(t *testing.T) {
	ctx := context.Background()
	w := openTestWarehouse(t)

	snap := testSnapshot()
	snap.Facts[1].Department = "Alchemy"

	_, err := w.Replace(ctx, snap)
	var intErr *sterrors.IntegrityError
	require.True(t, errors.As(err, &intErr), "want IntegrityError, got %v", err)
	assert.Equal(t, warehouse.TableDepartment, intErr.Table)
	assert.Equal(t, "Alchemy", intErr.Key)

	// The failed load must not leave partial state behind.
	n, err := w.TableCount(ctx, warehouse.TablePerformance)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplace_SemesterNameRecursAcrossYears(t *testing.T) {
	ctx := context.Background()
	w := openTestWarehouse(t)

	snap := testSnapshot()
	snap.Semesters = append(snap.Semesters, warehouse.Semester{
		Name: "Fall 2024", AcademicYear: "2025/2026",
	})
	snap.Facts[2].AcademicYear = "2025/2026"

	res, err := w.Replace(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Semesters)

	rows, err := w.PerformanceRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Facts sharing a semester name must keep their own academic year.
	assert.Equal(t, "2024/2025", rows[0].AcademicYear)
	assert.Equal(t, "2024/2025", rows[1].AcademicYear)
	assert.Equal(t, "2025/2026", rows[2].AcademicYear)
	for _, r := range rows {
		assert.Equal(t, "Fall 2024", r.SemesterName)
	}
}

func TestReplace_UnresolvedSemesterYearIsIntegrityError(t *testing.T) {
	ctx := context.Background()
	w := openTestWarehouse(t)

	snap := testSnapshot()
	snap.Facts[0].AcademicYear = "1999/2000"

	_, err := w.Replace(ctx, snap)
	var intErr *sterrors.IntegrityError
	require.True(t, errors.As(err, &intErr), "want IntegrityError, got %v", err)
	assert.Equal(t, warehouse.TableSemester, intErr.Table)
}

func TestPerformanceRows_JoinsDimensions(t *testing.T) {
	ctx := context.Background()
	w := openTestWarehouse(t)

	_, err := w.Replace(ctx, testSnapshot())
	require.NoError(t, err)

	rows, err := w.PerformanceRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Ordered by student_id with dimensions resolved through the keys.
	assert.Equal(t, 1, rows[0].StudentID)
	assert.Equal(t, "Business", rows[0].DepartmentName)
	assert.Equal(t, "Student_1", rows[0].StudentName)
	assert.Equal(t, "Engineering", rows[1].DepartmentName)
	assert.Equal(t, 74.0, rows[0].FinalGrade)
	assert.Equal(t, "High Risk", rows[1].RiskCategory)
}

func TestTrainingRows_DerivesPassLabel(t *testing.T) {
	ctx := context.Background()
	w := openTestWarehouse(t)

	_, err := w.Replace(ctx, testSnapshot())
	require.NoError(t, err)

	rows, err := w.TrainingRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Pass, "final_grade 74 is a pass")
	assert.Equal(t, 0, rows[1].Pass, "final_grade 49 is a fail")
	assert.Equal(t, 52.0, rows[1].Attendance)
}

func TestCreateSchema_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	w := openTestWarehouse(t)
	require.NoError(t, w.CreateSchema(ctx))
	require.NoError(t, w.CreateSchema(ctx))
}

func TestTableCount_RejectsUnknownTable(t *testing.T) {
	w := openTestWarehouse(t)
	_, err := w.TableCount(context.Background(), "sqlite_master; DROP TABLE dim_student")
	var valErr *sterrors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

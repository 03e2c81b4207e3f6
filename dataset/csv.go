package dataset

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"

	sterrors "github.com/edulytics/studentdw/pkg/errors"
)

// WriteCSV writes records to path in the Columns order.
func WriteCSV(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return errors.Wrap(err, "write header")
	}

	for i := range records {
		r := &records[i]
		row := []string{
			strconv.Itoa(r.StudentID),
			r.Name,
			r.Department,
			r.EnrollmentYear,
			r.Gender,
			formatScore(r.Attendance),
			formatScore(r.Midterm),
			formatScore(r.FinalScore),
			formatScore(r.Projects),
			formatScore(r.Quizzes),
			formatScore(r.Assignments),
			formatScore(r.TotalScore),
			formatScore(r.FinalGrade),
			r.Semester,
			r.AcademicYear,
			r.LastUpdated,
			r.Status,
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}
	return f.Close()
}

// ReadCSV reads a raw performance file. A missing required column is a
// FormatError. Empty score cells become NaN for the transform stage to
// impute; a non-numeric value in a non-imputable field is a
// ValidationError.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if len(rows) == 0 {
		return nil, sterrors.NewFormatError(path, Columns)
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[name] = i
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, sterrors.NewFormatError(path, missing)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell := func(col string) string { return row[idx[col]] }

		id, err := strconv.Atoi(cell("student_id"))
		if err != nil {
			return nil, sterrors.NewValidationError("student_id", "not an integer", cell("student_id"))
		}

		rec := Record{
			StudentID:      id,
			Name:           cell("student_name"),
			Department:     cell("department"),
			EnrollmentYear: cell("enrollment_year"),
			Gender:         cell("gender"),
			Semester:       cell("semester"),
			AcademicYear:   cell("academic_year"),
			LastUpdated:    cell("last_updated"),
			Status:         cell("status"),
		}

		// attendance_rate, midterm_score and final_score may be absent;
		// they surface as NaN and are mean-imputed during transform.
		// Non-empty cells must still be numeric.
		for _, col := range []struct {
			name string
			dst  *float64
		}{
			{"attendance_rate", &rec.Attendance},
			{"midterm_score", &rec.Midterm},
			{"final_score", &rec.FinalScore},
		} {
			v, err := parseNullable(col.name, cell(col.name))
			if err != nil {
				return nil, err
			}
			*col.dst = v
		}

		for _, col := range []struct {
			name string
			dst  *float64
		}{
			{"projects_score", &rec.Projects},
			{"quizzes_avg", &rec.Quizzes},
			{"assignments_avg", &rec.Assignments},
			{"total_score", &rec.TotalScore},
			{"final_grade", &rec.FinalGrade},
		} {
			v, err := strconv.ParseFloat(cell(col.name), 64)
			if err != nil {
				return nil, sterrors.NewValidationError(col.name, "not numeric", cell(col.name))
			}
			*col.dst = v
		}

		records = append(records, rec)
	}

	return records, nil
}

// parseNullable maps an empty cell to NaN. A non-empty cell that fails
// to parse is a ValidationError, never a missing value.
func parseNullable(col, s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, sterrors.NewValidationError(col, "not numeric", s)
	}
	return v, nil
}

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

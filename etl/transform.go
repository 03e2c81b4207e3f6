// Package etl implements the extract, transform and load stages that
// move raw student-performance records into the star-schema warehouse.
package etl

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/edulytics/studentdw/dataset"
	sterrors "github.com/edulytics/studentdw/pkg/errors"
)

// Risk categories derived from attendance and midterm score.
const (
	HighRisk   = "High Risk"
	MediumRisk = "Medium Risk"
	LowRisk    = "Low Risk"
)

// Performance tiers derived from final grade.
const (
	TierFailing      = "Failing"
	TierSatisfactory = "Satisfactory"
	TierGood         = "Good"
	TierExcellent    = "Excellent"
)

// Row is a cleaned record with its derived categorical fields.
type Row struct {
	dataset.Record

	RiskCategory    string
	PerformanceTier string
}

// Transform cleans and enriches raw records. It is a pure function of
// its input: missing attendance, midterm and final-score values are
// replaced with the batch mean, every score is clamped to [0, 100],
// the two derived categories are assigned and department names are
// normalized. Any score still non-numeric afterwards is a
// ValidationError.
func Transform(records []dataset.Record) ([]Row, error) {
	if len(records) == 0 {
		return nil, sterrors.NewModelError("Transform", "no records", sterrors.ErrEmptyData)
	}

	attMean := columnMean(records, func(r *dataset.Record) float64 { return r.Attendance })
	midMean := columnMean(records, func(r *dataset.Record) float64 { return r.Midterm })
	finMean := columnMean(records, func(r *dataset.Record) float64 { return r.FinalScore })

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if math.IsNaN(rec.Attendance) {
			rec.Attendance = attMean
		}
		if math.IsNaN(rec.Midterm) {
			rec.Midterm = midMean
		}
		if math.IsNaN(rec.FinalScore) {
			rec.FinalScore = finMean
		}

		for i, v := range rec.Scores() {
			rec.SetScore(i, dataset.Clamp(v))
		}

		for i, v := range rec.Scores() {
			if math.IsNaN(v) {
				return nil, sterrors.NewValidationError(dataset.ScoreNames[i],
					fmt.Sprintf("non-numeric value for student %d", rec.StudentID), v)
			}
		}

		rec.Department = titleCase(strings.TrimSpace(rec.Department))

		rows = append(rows, Row{
			Record:          rec,
			RiskCategory:    RiskCategory(rec.Attendance, rec.Midterm),
			PerformanceTier: PerformanceTier(rec.FinalGrade),
		})
	}

	return rows, nil
}

// RiskCategory classifies a student's early failure risk from attendance
// rate and midterm score. The High-Risk test is evaluated first and
// short-circuits, so a row matching both High and Medium is High Risk.
func RiskCategory(attendance, midterm float64) string {
	switch {
	case attendance < 60 || midterm < 60:
		return HighRisk
	case attendance < 75 || midterm < 70:
		return MediumRisk
	default:
		return LowRisk
	}
}

// PerformanceTier bins a final grade at the fixed edges 60/70/80, each
// lower edge belonging to the higher tier: 60 is Satisfactory, 70 is
// Good, 80 is Excellent.
func PerformanceTier(finalGrade float64) string {
	switch {
	case finalGrade < 60:
		return TierFailing
	case finalGrade < 70:
		return TierSatisfactory
	case finalGrade < 80:
		return TierGood
	default:
		return TierExcellent
	}
}

// columnMean averages the present (non-NaN) values of one column.
func columnMean(records []dataset.Record, get func(*dataset.Record) float64) float64 {
	sum, n := 0.0, 0
	for i := range records {
		if v := get(&records[i]); !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// titleCase uppercases the first letter of each word and lowercases the
// rest, matching the normalization the warehouse dimension names use
// ("  computer science " becomes "Computer Science", "CS" becomes "Cs").
// Any non-letter starts a new word, so "cs-math" becomes "Cs-Math".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			prevLetter = false
			b.WriteRune(r)
		case prevLetter:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLetter = true
		}
	}
	return b.String()
}

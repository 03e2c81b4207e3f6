package dataset

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	sterrors "github.com/edulytics/studentdw/pkg/errors"
)

// Total-score component weights. They must sum to 1.0; NewGenerator
// checks this.
const (
	WeightMidterm     = 0.25
	WeightFinal       = 0.35
	WeightProjects    = 0.20
	WeightQuizzes     = 0.10
	WeightAssignments = 0.10
)

const passingGrade = 60.0

// profile is the department-conditioned distribution of the three base
// metrics: each pair is (mean, stddev) of a normal draw.
type profile struct {
	attendance [2]float64
	midterm    [2]float64
	finalGrade [2]float64
}

var (
	departments = []string{"Business", "CS", "Engineering", "Mathematics"}
	deptWeights = []float64{0.299, 0.241, 0.240, 0.220}

	deptProfiles = map[string]profile{
		"Business":    {attendance: [2]float64{85, 8}, midterm: [2]float64{73.48, 10}, finalGrade: [2]float64{72.17, 8}},
		"CS":          {attendance: [2]float64{70, 10}, midterm: [2]float64{73.52, 10}, finalGrade: [2]float64{67.25, 9}},
		"Engineering": {attendance: [2]float64{75, 9}, midterm: [2]float64{68.85, 10}, finalGrade: [2]float64{68.48, 8}},
		"Mathematics": {attendance: [2]float64{72, 10}, midterm: [2]float64{68.23, 10}, finalGrade: [2]float64{69.43, 9}},
	}

	enrollmentYears = []string{"2021", "2022", "2023", "2024"}
	genders         = []string{"M", "F"}
)

// Generator produces a reproducible synthetic student-performance table.
// All randomness flows through a single explicitly seeded source, so the
// same seed yields byte-identical output.
type Generator struct {
	rng  *rand.Rand
	dept distuv.Categorical
	now  func() time.Time

	semester     string
	academicYear string
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithClock overrides the clock used for the last_updated column.
// Fixing the clock makes output fully reproducible across days.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a Generator seeded with the given value.
func NewGenerator(seed uint64, opts ...GeneratorOption) (*Generator, error) {
	sum := WeightMidterm + WeightFinal + WeightProjects + WeightQuizzes + WeightAssignments
	if diff := sum - 1.0; diff > 1e-12 || diff < -1e-12 {
		return nil, sterrors.NewValueError("NewGenerator",
			fmt.Sprintf("total-score weights must sum to 1.0, got %v", sum))
	}

	rng := rand.New(rand.NewSource(seed))
	g := &Generator{
		rng:          rng,
		dept:         distuv.NewCategorical(deptWeights, rng),
		now:          time.Now,
		semester:     "Fall 2024",
		academicYear: "2024/2025",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate produces n synthetic student records.
func (g *Generator) Generate(n int) ([]Record, error) {
	if n <= 0 {
		return nil, sterrors.NewValueError("Generator.Generate", "student count must be positive")
	}

	today := g.now().Format("2006-01-02")
	records := make([]Record, 0, n)

	for i := 1; i <= n; i++ {
		dept := departments[int(g.dept.Rand())]
		rec := g.generateScores(dept)

		rec.StudentID = i
		rec.Name = fmt.Sprintf("Student_%d", i)
		rec.Department = dept
		rec.EnrollmentYear = enrollmentYears[g.rng.Intn(len(enrollmentYears))]
		rec.Gender = genders[g.rng.Intn(len(genders))]
		rec.Semester = g.semester
		rec.AcademicYear = g.academicYear
		rec.LastUpdated = today

		rec.TotalScore = rec.Midterm*WeightMidterm +
			rec.FinalScore*WeightFinal +
			rec.Projects*WeightProjects +
			rec.Quizzes*WeightQuizzes +
			rec.Assignments*WeightAssignments

		if rec.FinalGrade >= passingGrade {
			rec.Status = "Pass"
		} else {
			rec.Status = "Fail"
		}

		records = append(records, rec)
	}

	return records, nil
}

// generateScores draws the per-student metrics from the department's
// distributions. Derived scores are linear combinations of attendance
// and midterm plus independent normal noise, clamped to [0, 100].
func (g *Generator) generateScores(dept string) Record {
	p := deptProfiles[dept]

	attendance := g.normal(p.attendance[0], p.attendance[1])
	midterm := g.normal(p.midterm[0], p.midterm[1])
	finalGrade := g.normal(p.finalGrade[0], p.finalGrade[1])

	projects := midterm*0.8 + g.normal(10, 5)
	quizzes := attendance*0.7 + g.normal(15, 5)
	assignments := (midterm+attendance)/2*0.9 + g.normal(5, 3)
	finalScore := finalGrade*1.2 + g.normal(0, 5)

	return Record{
		Attendance:  Clamp(attendance),
		Midterm:     Clamp(midterm),
		FinalScore:  Clamp(finalScore),
		Projects:    Clamp(projects),
		Quizzes:     Clamp(quizzes),
		Assignments: Clamp(assignments),
		FinalGrade:  Clamp(finalGrade),
	}
}

func (g *Generator) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: g.rng}.Rand()
}

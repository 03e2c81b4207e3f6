package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/edulytics/studentdw/etl"
	"github.com/edulytics/studentdw/warehouse"
)

// DepartmentStats aggregates final grade, attendance and midterm per
// department.
type DepartmentStats struct {
	Name           string
	MeanGrade      float64
	StdGrade       float64
	MinGrade       float64
	MaxGrade       float64
	MeanAttendance float64
	MeanMidterm    float64
	Students       int
}

// DepartmentAggregates groups the warehouse rows by department and
// computes the per-department summary, sorted by department name.
func DepartmentAggregates(rows []warehouse.PerformanceRow) []DepartmentStats {
	type group struct {
		grades     []float64
		attendance []float64
		midterm    []float64
	}
	groups := make(map[string]*group)
	for _, r := range rows {
		g, ok := groups[r.DepartmentName]
		if !ok {
			g = &group{}
			groups[r.DepartmentName] = g
		}
		g.grades = append(g.grades, r.FinalGrade)
		g.attendance = append(g.attendance, r.Attendance)
		g.midterm = append(g.midterm, r.Midterm)
	}

	out := make([]DepartmentStats, 0, len(groups))
	for name, g := range groups {
		min, max := g.grades[0], g.grades[0]
		for _, v := range g.grades[1:] {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}

		std := 0.0
		if len(g.grades) > 1 {
			std = stat.StdDev(g.grades, nil)
		}

		out = append(out, DepartmentStats{
			Name:           name,
			MeanGrade:      stat.Mean(g.grades, nil),
			StdGrade:       std,
			MinGrade:       min,
			MaxGrade:       max,
			MeanAttendance: stat.Mean(g.attendance, nil),
			MeanMidterm:    stat.Mean(g.midterm, nil),
			Students:       len(g.grades),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RiskCrosstab is the row-normalized percentage distribution of risk
// categories per department. Percent[i][j] is the share of department
// Departments[i] in category Categories[j], in percent.
type RiskCrosstab struct {
	Departments []string
	Categories  []string
	Percent     [][]float64
}

// RiskByDepartment cross-tabulates risk category by department,
// normalizing each department row to percentages.
func RiskByDepartment(rows []warehouse.PerformanceRow) RiskCrosstab {
	categories := []string{etl.HighRisk, etl.MediumRisk, etl.LowRisk}
	catIdx := make(map[string]int, len(categories))
	for i, c := range categories {
		catIdx[c] = i
	}

	counts := make(map[string][]int)
	for _, r := range rows {
		if _, ok := counts[r.DepartmentName]; !ok {
			counts[r.DepartmentName] = make([]int, len(categories))
		}
		if j, ok := catIdx[r.RiskCategory]; ok {
			counts[r.DepartmentName][j]++
		}
	}

	departments := make([]string, 0, len(counts))
	for name := range counts {
		departments = append(departments, name)
	}
	sort.Strings(departments)

	percent := make([][]float64, len(departments))
	for i, name := range departments {
		row := counts[name]
		total := 0
		for _, n := range row {
			total += n
		}
		percent[i] = make([]float64, len(categories))
		for j, n := range row {
			if total > 0 {
				percent[i][j] = float64(n) / float64(total) * 100
			}
		}
	}

	return RiskCrosstab{Departments: departments, Categories: categories, Percent: percent}
}

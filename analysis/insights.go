package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/edulytics/studentdw/etl"
	"github.com/edulytics/studentdw/warehouse"
)

// Fixed constants of the ROI estimate: an intervention program is
// assumed to save 40% of currently failing students, each saved student
// is worth 5000, and the system costs 60000 in its first year.
const (
	roiSaveRate       = 0.4
	roiValuePerSaved  = 5000.0
	roiFirstYearCost  = 60000.0
	lowAttendanceCut  = 70.0
	highAttendanceCut = 80.0
	outlierLowGrade   = 68.0
	outlierHighGrade  = 71.0
	failingGrade      = 60.0
)

// DepartmentOutlier is a department whose average grade falls outside
// the expected band: below 68 it needs curriculum support, above 71 its
// practices are worth sharing.
type DepartmentOutlier struct {
	Name         string
	MeanGrade    float64
	NeedsSupport bool
}

// ROIEstimate is the fixed-formula business value calculation.
type ROIEstimate struct {
	FailingStudents int
	FailingShare    float64
	PotentialSaves  int
	Savings         float64
	SystemCost      float64
	ROIPercent      float64
}

// Insights are the five derived business statistics printed by the
// report. They are presentation-only numbers with no feedback into the
// warehouse.
type Insights struct {
	// Early warning: high-risk population.
	HighRiskCount         int
	HighRiskShare         float64
	HighRiskAvgAttendance float64
	HighRiskAvgMidterm    float64

	// Attendance impact: grade gap between low and high attendance cohorts.
	LowAttendanceAvgGrade  float64
	HighAttendanceAvgGrade float64
	AttendanceGradeGap     float64

	// Midterm as early predictor.
	MidtermFailures        int
	MidtermToFinalFailRate float64

	// Department outliers.
	Outliers []DepartmentOutlier

	// Business value.
	ROI ROIEstimate
}

// ComputeInsights derives the business statistics from the joined
// warehouse rows.
func ComputeInsights(rows []warehouse.PerformanceRow) Insights {
	var ins Insights
	total := len(rows)
	if total == 0 {
		return ins
	}

	var highRiskAtt, highRiskMid []float64
	var lowAttGrades, highAttGrades []float64
	midtermFailed, bothFailed := 0, 0
	failing := 0

	for _, r := range rows {
		if r.RiskCategory == etl.HighRisk {
			highRiskAtt = append(highRiskAtt, r.Attendance)
			highRiskMid = append(highRiskMid, r.Midterm)
		}
		if r.Attendance < lowAttendanceCut {
			lowAttGrades = append(lowAttGrades, r.FinalGrade)
		}
		if r.Attendance >= highAttendanceCut {
			highAttGrades = append(highAttGrades, r.FinalGrade)
		}
		if r.Midterm < failingGrade {
			midtermFailed++
			if r.FinalGrade < failingGrade {
				bothFailed++
			}
		}
		if r.FinalGrade < failingGrade {
			failing++
		}
	}

	ins.HighRiskCount = len(highRiskAtt)
	ins.HighRiskShare = float64(ins.HighRiskCount) / float64(total) * 100
	if ins.HighRiskCount > 0 {
		ins.HighRiskAvgAttendance = stat.Mean(highRiskAtt, nil)
		ins.HighRiskAvgMidterm = stat.Mean(highRiskMid, nil)
	}

	if len(lowAttGrades) > 0 {
		ins.LowAttendanceAvgGrade = stat.Mean(lowAttGrades, nil)
	}
	if len(highAttGrades) > 0 {
		ins.HighAttendanceAvgGrade = stat.Mean(highAttGrades, nil)
	}
	ins.AttendanceGradeGap = ins.HighAttendanceAvgGrade - ins.LowAttendanceAvgGrade

	ins.MidtermFailures = midtermFailed
	if midtermFailed > 0 {
		ins.MidtermToFinalFailRate = float64(bothFailed) / float64(midtermFailed) * 100
	}

	for _, d := range DepartmentAggregates(rows) {
		switch {
		case d.MeanGrade < outlierLowGrade:
			ins.Outliers = append(ins.Outliers, DepartmentOutlier{Name: d.Name, MeanGrade: d.MeanGrade, NeedsSupport: true})
		case d.MeanGrade > outlierHighGrade:
			ins.Outliers = append(ins.Outliers, DepartmentOutlier{Name: d.Name, MeanGrade: d.MeanGrade})
		}
	}

	saves := int(float64(failing) * roiSaveRate)
	savings := float64(saves) * roiValuePerSaved
	ins.ROI = ROIEstimate{
		FailingStudents: failing,
		FailingShare:    float64(failing) / float64(total) * 100,
		PotentialSaves:  saves,
		Savings:         savings,
		SystemCost:      roiFirstYearCost,
		ROIPercent:      (savings - roiFirstYearCost) / roiFirstYearCost * 100,
	}

	return ins
}

package analysis

import (
	"math"
	"testing"

	"github.com/edulytics/studentdw/etl"
	"github.com/edulytics/studentdw/warehouse"
)

// insightRows covers every insight branch: two high-risk students (one
// failing both midterm and final), cohorts on both sides of the
// attendance cuts, and departments at both outlier edges.
func insightRows() []warehouse.PerformanceRow {
	return []warehouse.PerformanceRow{
		{StudentID: 1, DepartmentName: "Business", Attendance: 50, Midterm: 55, FinalGrade: 52, RiskCategory: etl.HighRisk},
		{StudentID: 2, DepartmentName: "Business", Attendance: 58, Midterm: 65, FinalGrade: 62, RiskCategory: etl.HighRisk},
		{StudentID: 3, DepartmentName: "Business", Attendance: 85, Midterm: 80, FinalGrade: 82, RiskCategory: etl.LowRisk},
		{StudentID: 4, DepartmentName: "Cs", Attendance: 90, Midterm: 85, FinalGrade: 88, RiskCategory: etl.LowRisk},
		{StudentID: 5, DepartmentName: "Cs", Attendance: 75, Midterm: 58, FinalGrade: 61, RiskCategory: etl.HighRisk},
	}
}

func TestComputeInsights_HighRisk(t *testing.T) {
	ins := ComputeInsights(insightRows())

	if ins.HighRiskCount != 3 {
		t.Errorf("high-risk count = %d, want 3", ins.HighRiskCount)
	}
	if math.Abs(ins.HighRiskShare-60) > epsilon {
		t.Errorf("high-risk share = %v, want 60", ins.HighRiskShare)
	}
	// Mean attendance of students 1, 2 and 5.
	if math.Abs(ins.HighRiskAvgAttendance-61) > epsilon {
		t.Errorf("high-risk avg attendance = %v, want 61", ins.HighRiskAvgAttendance)
	}
}

func TestComputeInsights_AttendanceGap(t *testing.T) {
	ins := ComputeInsights(insightRows())

	// Below 70: students 1 and 2 with grades 52 and 62.
	if math.Abs(ins.LowAttendanceAvgGrade-57) > epsilon {
		t.Errorf("low-attendance avg grade = %v, want 57", ins.LowAttendanceAvgGrade)
	}
	// At or above 80: students 3 and 4 with grades 82 and 88.
	if math.Abs(ins.HighAttendanceAvgGrade-85) > epsilon {
		t.Errorf("high-attendance avg grade = %v, want 85", ins.HighAttendanceAvgGrade)
	}
	if math.Abs(ins.AttendanceGradeGap-28) > epsilon {
		t.Errorf("attendance grade gap = %v, want 28", ins.AttendanceGradeGap)
	}
}

func TestComputeInsights_MidtermPredictor(t *testing.T) {
	ins := ComputeInsights(insightRows())

	// Students 1 and 5 failed the midterm; only student 1 also failed
	// the final grade.
	if ins.MidtermFailures != 2 {
		t.Errorf("midterm failures = %d, want 2", ins.MidtermFailures)
	}
	if math.Abs(ins.MidtermToFinalFailRate-50) > epsilon {
		t.Errorf("midterm-to-final fail rate = %v, want 50", ins.MidtermToFinalFailRate)
	}
}

func TestComputeInsights_Outliers(t *testing.T) {
	ins := ComputeInsights(insightRows())

	// Business averages (52+62+82)/3 = 65.33 (needs support),
	// Cs averages (88+61)/2 = 74.5 (above the high edge).
	if len(ins.Outliers) != 2 {
		t.Fatalf("got %d outliers, want 2: %+v", len(ins.Outliers), ins.Outliers)
	}
	if ins.Outliers[0].Name != "Business" || !ins.Outliers[0].NeedsSupport {
		t.Errorf("first outlier = %+v, want Business needing support", ins.Outliers[0])
	}
	if ins.Outliers[1].Name != "Cs" || ins.Outliers[1].NeedsSupport {
		t.Errorf("second outlier = %+v, want Cs above the band", ins.Outliers[1])
	}
}

func TestComputeInsights_ROI(t *testing.T) {
	ins := ComputeInsights(insightRows())

	// One failing student (grade 52). Saves = floor(1 * 0.4) = 0.
	if ins.ROI.FailingStudents != 1 {
		t.Errorf("failing students = %d, want 1", ins.ROI.FailingStudents)
	}
	if math.Abs(ins.ROI.FailingShare-20) > epsilon {
		t.Errorf("failing share = %v, want 20", ins.ROI.FailingShare)
	}
	if ins.ROI.PotentialSaves != 0 {
		t.Errorf("potential saves = %d, want 0", ins.ROI.PotentialSaves)
	}
	if ins.ROI.SystemCost != 60000 {
		t.Errorf("system cost = %v, want 60000", ins.ROI.SystemCost)
	}
	if math.Abs(ins.ROI.ROIPercent+100) > epsilon {
		t.Errorf("ROI = %v, want -100 with zero savings", ins.ROI.ROIPercent)
	}
}

func TestComputeInsights_ROIWithSaves(t *testing.T) {
	rows := make([]warehouse.PerformanceRow, 100)
	for i := range rows {
		rows[i] = warehouse.PerformanceRow{
			StudentID:      i + 1,
			DepartmentName: "Engineering",
			Attendance:     80,
			Midterm:        70,
			FinalGrade:     70,
			RiskCategory:   etl.LowRisk,
		}
	}
	// 50 failing students.
	for i := 0; i < 50; i++ {
		rows[i].FinalGrade = 50
	}

	ins := ComputeInsights(rows)

	if ins.ROI.PotentialSaves != 20 {
		t.Errorf("potential saves = %d, want 20", ins.ROI.PotentialSaves)
	}
	if math.Abs(ins.ROI.Savings-100000) > epsilon {
		t.Errorf("savings = %v, want 100000", ins.ROI.Savings)
	}
	// (100000 - 60000) / 60000 = 66.67%.
	if math.Abs(ins.ROI.ROIPercent-100.0/1.5) > 1e-6 {
		t.Errorf("ROI = %v, want 66.67", ins.ROI.ROIPercent)
	}
}

func TestComputeInsights_Empty(t *testing.T) {
	ins := ComputeInsights(nil)
	if ins.HighRiskCount != 0 || ins.ROI.FailingStudents != 0 {
		t.Errorf("empty input produced non-zero insights: %+v", ins)
	}
}

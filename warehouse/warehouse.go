// Package warehouse manages the star-schema SQLite warehouse: one fact
// table referencing three dimension tables by surrogate key. All data
// tables use full-replace semantics; schema creation is idempotent.
package warehouse

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"

	sterrors "github.com/edulytics/studentdw/pkg/errors"
)

// Table names.
const (
	TableStudent     = "dim_student"
	TableDepartment  = "dim_department"
	TableSemester    = "dim_semester"
	TablePerformance = "fact_student_performance"
)

// Student is a dim_student row.
type Student struct {
	StudentID      int
	Name           string
	EnrollmentYear string
	Gender         string
	Status         string
}

// Department is a dim_department row. The surrogate id is assigned by
// the database on insert.
type Department struct {
	Name string
	Code string
}

// Semester is a dim_semester row.
type Semester struct {
	Name         string
	AcademicYear string
}

// Fact is a fact row prior to key resolution: it references its
// department by name and its semester by (name, academic year), which
// Replace resolves against the freshly written dimension tables.
type Fact struct {
	StudentID       int
	Department      string
	Semester        string
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
	LastUpdated     string
}

// Snapshot is one complete warehouse state: the distinct dimension rows
// plus every fact row, as produced by the transform stage.
type Snapshot struct {
	Students    []Student
	Departments []Department
	Semesters   []Semester
	Facts       []Fact
}

// LoadResult reports the rows written per table by a Replace.
type LoadResult struct {
	Students    int
	Departments int
	Semesters   int
	Facts       int
}

// Warehouse is a handle on the warehouse database file.
type Warehouse struct {
	db *sql.DB
}

// Open opens (creating if needed) the warehouse file at path.
func Open(path string) (*Warehouse, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open warehouse %s", path)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping warehouse %s", path)
	}
	return &Warehouse{db: db}, nil
}

// Close releases the underlying database handle.
func (w *Warehouse) Close() error {
	return w.db.Close()
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS dim_student (
		student_id      INTEGER PRIMARY KEY,
		student_name    TEXT,
		enrollment_year TEXT,
		gender          TEXT,
		status          TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS dim_department (
		department_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		department_name TEXT UNIQUE,
		department_code TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS dim_semester (
		semester_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		semester_name TEXT,
		academic_year TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS fact_student_performance (
		performance_id  INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id      INTEGER,
		department_id   INTEGER,
		semester_id     INTEGER,
		attendance_rate REAL,
		midterm_score   REAL,
		final_score     REAL,
		projects_score  REAL,
		quizzes_avg     REAL,
		assignments_avg REAL,
		total_score     REAL,
		final_grade     REAL,
		risk_category   TEXT,
		performance_tier TEXT,
		last_updated    TEXT,
		FOREIGN KEY (student_id) REFERENCES dim_student(student_id),
		FOREIGN KEY (department_id) REFERENCES dim_department(department_id),
		FOREIGN KEY (semester_id) REFERENCES dim_semester(semester_id)
	)`,
}

// CreateSchema creates the four star-schema tables. Safe to call on an
// already initialized warehouse.
func (w *Warehouse) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "create schema")
		}
	}
	return nil
}

// Replace rebuilds every data table from the snapshot within a single
// transaction. Fact rows are resolved against the freshly written
// dimensions; a fact whose department or semester has no dimension row
// aborts the load with an IntegrityError rather than being dropped.
func (w *Warehouse) Replace(ctx context.Context, snap *Snapshot) (LoadResult, error) {
	var res LoadResult

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return res, errors.Wrap(err, "begin load transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{TablePerformance, TableStudent, TableDepartment, TableSemester} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return res, errors.Wrapf(err, "clear %s", table)
		}
	}
	// Reset AUTOINCREMENT counters so surrogate keys restart at 1 on
	// every load, keeping repeated loads byte-identical.
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM sqlite_sequence WHERE name IN (?, ?)",
		TableDepartment, TableSemester); err != nil {
		return res, errors.Wrap(err, "reset sequences")
	}

	if res.Students, err = insertStudents(ctx, tx, snap.Students); err != nil {
		return res, err
	}

	deptIDs, err := insertDepartments(ctx, tx, snap.Departments)
	if err != nil {
		return res, err
	}
	res.Departments = len(deptIDs)

	semIDs, err := insertSemesters(ctx, tx, snap.Semesters)
	if err != nil {
		return res, err
	}
	res.Semesters = len(semIDs)

	if res.Facts, err = insertFacts(ctx, tx, snap.Facts, deptIDs, semIDs); err != nil {
		return res, err
	}

	if err = tx.Commit(); err != nil {
		return res, errors.Wrap(err, "commit load transaction")
	}
	return res, nil
}

func insertStudents(ctx context.Context, tx *sql.Tx, students []Student) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dim_student
		(student_id, student_name, enrollment_year, gender, status)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare dim_student insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range students {
		if _, err := stmt.ExecContext(ctx, s.StudentID, s.Name, s.EnrollmentYear, s.Gender, s.Status); err != nil {
			return 0, errors.Wrapf(err, "insert dim_student %d", s.StudentID)
		}
	}
	return len(students), nil
}

func insertDepartments(ctx context.Context, tx *sql.Tx, departments []Department) (map[string]int64, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dim_department
		(department_name, department_code) VALUES (?, ?)`)
	if err != nil {
		return nil, errors.Wrap(err, "prepare dim_department insert")
	}
	defer func() { _ = stmt.Close() }()

	ids := make(map[string]int64, len(departments))
	for _, d := range departments {
		result, err := stmt.ExecContext(ctx, d.Name, d.Code)
		if err != nil {
			return nil, errors.Wrapf(err, "insert dim_department %q", d.Name)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, errors.Wrap(err, "dim_department surrogate key")
		}
		ids[d.Name] = id
	}
	return ids, nil
}

// semesterKey identifies a semester dimension row. The same semester
// name recurs across academic years, so the name alone is ambiguous.
func semesterKey(name, academicYear string) string {
	return name + "\x00" + academicYear
}

func insertSemesters(ctx context.Context, tx *sql.Tx, semesters []Semester) (map[string]int64, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dim_semester
		(semester_name, academic_year) VALUES (?, ?)`)
	if err != nil {
		return nil, errors.Wrap(err, "prepare dim_semester insert")
	}
	defer func() { _ = stmt.Close() }()

	ids := make(map[string]int64, len(semesters))
	for _, s := range semesters {
		result, err := stmt.ExecContext(ctx, s.Name, s.AcademicYear)
		if err != nil {
			return nil, errors.Wrapf(err, "insert dim_semester %q", s.Name)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, errors.Wrap(err, "dim_semester surrogate key")
		}
		ids[semesterKey(s.Name, s.AcademicYear)] = id
	}
	return ids, nil
}

func insertFacts(ctx context.Context, tx *sql.Tx, facts []Fact, deptIDs, semIDs map[string]int64) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fact_student_performance
		(student_id, department_id, semester_id, attendance_rate, midterm_score,
		 final_score, projects_score, quizzes_avg, assignments_avg, total_score,
		 final_grade, risk_category, performance_tier, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare fact insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range facts {
		deptID, ok := deptIDs[f.Department]
		if !ok {
			return 0, sterrors.NewIntegrityError(TableDepartment, f.Department)
		}
		semID, ok := semIDs[semesterKey(f.Semester, f.AcademicYear)]
		if !ok {
			return 0, sterrors.NewIntegrityError(TableSemester, f.Semester+" "+f.AcademicYear)
		}

		if _, err := stmt.ExecContext(ctx,
			f.StudentID, deptID, semID,
			f.Attendance, f.Midterm, f.FinalScore, f.Projects,
			f.Quizzes, f.Assignments, f.TotalScore, f.FinalGrade,
			f.RiskCategory, f.PerformanceTier, f.LastUpdated); err != nil {
			return 0, errors.Wrapf(err, "insert fact for student %d", f.StudentID)
		}
	}
	return len(facts), nil
}

// TableCount returns the row count of one of the warehouse tables.
func (w *Warehouse) TableCount(ctx context.Context, table string) (int, error) {
	switch table {
	case TableStudent, TableDepartment, TableSemester, TablePerformance:
	default:
		return 0, sterrors.NewValueError("Warehouse.TableCount", "unknown table "+table)
	}

	var n int
	if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, errors.Wrapf(err, "count %s", table)
	}
	return n, nil
}

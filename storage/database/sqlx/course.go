package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core/course"
)

// modulesJSON stores the module list in a JSONB column.
type modulesJSON []course.Module

func (m modulesJSON) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]course.Module(m))
}

func (m *modulesJSON) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("modulesJSON: unexpected type %T", src)
	}
	return json.Unmarshal(b, (*[]course.Module)(m))
}

type courseRow struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	Description      string         `db:"description"`
	Category         string         `db:"category"`
	Level            string         `db:"level"`
	Thumbnail        string         `db:"thumbnail"`
	InstructorID     string         `db:"instructor_id"`
	Modules          modulesJSON    `db:"modules"`
	EnrolledStudents pq.StringArray `db:"enrolled_students"`
	IsPublished      bool           `db:"is_published"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

const courseColumns = `id, title, description, category, level, thumbnail, instructor_id, modules,
	enrolled_students, is_published, created_at, updated_at`

func toCourseRow(crs course.Course) courseRow {
	students := crs.EnrolledStudents
	if students == nil {
		students = []string{}
	}
	return courseRow{
		ID:               crs.ID,
		Title:            crs.Title,
		Description:      crs.Description,
		Category:         crs.Category,
		Level:            string(crs.Level),
		Thumbnail:        crs.Thumbnail,
		InstructorID:     crs.InstructorID,
		Modules:          crs.Modules,
		EnrolledStudents: students,
		IsPublished:      crs.IsPublished,
		CreatedAt:        crs.CreatedAt,
		UpdatedAt:        crs.UpdatedAt,
	}
}

func (row courseRow) toCourse() course.Course {
	students := []string(row.EnrolledStudents)
	if students == nil {
		students = []string{}
	}
	return course.Course{
		ID:               row.ID,
		Title:            row.Title,
		Description:      row.Description,
		Category:         row.Category,
		Level:            course.Level(row.Level),
		Thumbnail:        row.Thumbnail,
		InstructorID:     row.InstructorID,
		Modules:          row.Modules,
		EnrolledStudents: students,
		IsPublished:      row.IsPublished,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := `INSERT INTO courses (` + courseColumns + `)
		VALUES (:id, :title, :description, :category, :level, :thumbnail, :instructor_id, :modules,
		:enrolled_students, :is_published, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toCourseRow(crs)); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func getCourse(ctx context.Context, q sqlx.QueryerContext, id string, forUpdate bool) (course.Course, error) {
	b := psql.Select(courseColumns).From("courses").Where(sq.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	var row courseRow
	if err := get(ctx, q, &row, b); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	return getCourse(ctx, repo.db, id, false)
}

func courseWhere(filter course.QueryFilter) sq.Eq {
	where := sq.Eq{}
	if filter.InstructorID != "" {
		where["instructor_id"] = filter.InstructorID
	}
	if filter.PublishedOnly {
		where["is_published"] = true
	}
	return where
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Course, error) {
	var rows []courseRow
	b := psql.Select(courseColumns).From("courses").Where(courseWhere(filter)).OrderBy(newestFirst...)
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) CountCourses(ctx context.Context, filter course.QueryFilter) (int, error) {
	n, err := count(ctx, repo.db, "courses", courseWhere(filter))
	return n, errors.Wrap(err, "counting courses")
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := `UPDATE courses SET title = :title, description = :description, category = :category, level = :level,
		thumbnail = :thumbnail, modules = :modules, is_published = :is_published, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toCourseRow(crs))
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourse(ctx, crs.ID)
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) AddStudent(ctx context.Context, courseID, studentID string) error {
	res, err := repo.db.ExecContext(ctx,
		"UPDATE courses SET enrolled_students = array_append(enrolled_students, $1) WHERE id = $2",
		studentID, courseID,
	)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}

// RemoveStudent locks the course row since array_remove would drop every occurrence.
func (repo *courseRepository) RemoveStudent(ctx context.Context, courseID, studentID string) (err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	crs, err := getCourse(ctx, tx, courseID, true)
	if err != nil {
		return err
	}
	if !crs.RemoveStudent(studentID) {
		return tx.Commit()
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE courses SET enrolled_students = $1 WHERE id = $2",
		pq.StringArray(crs.EnrolledStudents), courseID,
	)
	if err != nil {
		return errors.Wrap(err, "removing student")
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core/enrollment"
)

// progressJSON stores the module progress list in a JSONB column.
type progressJSON []enrollment.ModuleProgress

func (p progressJSON) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]enrollment.ModuleProgress(p))
}

func (p *progressJSON) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return errors.Errorf("progressJSON: unexpected type %T", src)
	}
	return json.Unmarshal(b, (*[]enrollment.ModuleProgress)(p))
}

type enrollmentRow struct {
	ID                 string       `db:"id"`
	StudentID          string       `db:"student_id"`
	CourseID           string       `db:"course_id"`
	Progress           progressJSON `db:"progress"`
	ProgressPercentage int          `db:"progress_percentage"`
	Version            int          `db:"version"`
	EnrolledAt         time.Time    `db:"enrolled_at"`
	CompletedAt        *time.Time   `db:"completed_at"`
}

const enrollmentColumns = "id, student_id, course_id, progress, progress_percentage, version, enrolled_at, completed_at"

func toEnrollmentRow(e enrollment.Enrollment) enrollmentRow {
	return enrollmentRow{
		ID:                 e.ID,
		StudentID:          e.StudentID,
		CourseID:           e.CourseID,
		Progress:           e.Progress,
		ProgressPercentage: e.ProgressPercentage,
		Version:            e.Version,
		EnrolledAt:         e.EnrolledAt,
		CompletedAt:        e.CompletedAt,
	}
}

func (row enrollmentRow) toEnrollment() enrollment.Enrollment {
	e := enrollment.Enrollment{
		ID:                 row.ID,
		StudentID:          row.StudentID,
		CourseID:           row.CourseID,
		Progress:           row.Progress,
		ProgressPercentage: row.ProgressPercentage,
		Version:            row.Version,
		EnrolledAt:         row.EnrolledAt.UTC(),
	}
	if row.CompletedAt != nil {
		ts := row.CompletedAt.UTC()
		e.CompletedAt = &ts
	}
	return e
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	q := `INSERT INTO enrollments (` + enrollmentColumns + `)
		VALUES (:id, :student_id, :course_id, :progress, :progress_percentage, :version, :enrolled_at, :completed_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toEnrollmentRow(e)); err != nil {
		if isUniqueViolation(err, "enrollments_student_course_key") {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo *enrollmentRepository) get(ctx context.Context, where sq.Eq) (enrollment.Enrollment, error) {
	var row enrollmentRow
	err := get(ctx, repo.db, &row, psql.Select(enrollmentColumns).From("enrollments").Where(where))
	if err == sql.ErrNoRows {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "selecting enrollment")
	}
	return row.toEnrollment(), nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, id string) (enrollment.Enrollment, error) {
	return repo.get(ctx, sq.Eq{"id": id})
}

func (repo *enrollmentRepository) FindEnrollment(ctx context.Context, studentID, courseID string) (enrollment.Enrollment, error) {
	return repo.get(ctx, sq.Eq{"student_id": studentID, "course_id": courseID})
}

func enrollmentWhere(filter enrollment.QueryFilter) sq.Eq {
	where := sq.Eq{}
	if filter.StudentID != "" {
		where["student_id"] = filter.StudentID
	}
	if filter.CourseID != "" {
		where["course_id"] = filter.CourseID
	}
	return where
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	var rows []enrollmentRow
	b := psql.Select(enrollmentColumns).From("enrollments").Where(enrollmentWhere(filter)).OrderBy(latestEnrolmentFirst...)
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	enrollments := make([]enrollment.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.toEnrollment())
	}
	return enrollments, nil
}

func (repo *enrollmentRepository) CountEnrollments(ctx context.Context, filter enrollment.QueryFilter) (int, error) {
	n, err := count(ctx, repo.db, "enrollments", enrollmentWhere(filter))
	return n, errors.Wrap(err, "counting enrollments")
}

func (repo *enrollmentRepository) UpdateProgress(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	q := `UPDATE enrollments
		SET progress = $1, progress_percentage = $2, completed_at = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING ` + enrollmentColumns
	var row enrollmentRow
	err := repo.db.GetContext(ctx, &row, q, progressJSON(e.Progress), e.ProgressPercentage, e.CompletedAt, e.ID, e.Version)
	if err == sql.ErrNoRows {
		// either gone or moved on
		if _, gErr := repo.GetEnrollment(ctx, e.ID); gErr != nil {
			return enrollment.Enrollment{}, gErr
		}
		return enrollment.Enrollment{}, enrollment.ErrVersionMismatch
	}
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "updating enrollment progress")
	}
	return row.toEnrollment(), nil
}

func (repo *enrollmentRepository) DeleteEnrollment(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollments(ctx context.Context, filter enrollment.QueryFilter) (int, error) {
	where := enrollmentWhere(filter)
	if len(where) == 0 {
		return 0, errors.New("deleting enrollments: empty filter")
	}
	res, err := exec(ctx, repo.db, psql.Delete("enrollments").Where(where))
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollments")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting deleted enrollments")
}

package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core/enrollment"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db.enrollment}
}

func cloneEnrollment(e enrollment.Enrollment) enrollment.Enrollment {
	e.Progress = append([]enrollment.ModuleProgress{}, e.Progress...)
	return e
}

func matches(e *enrollment.Enrollment, filter enrollment.QueryFilter) bool {
	return (filter.StudentID == "" || e.StudentID == filter.StudentID) &&
		(filter.CourseID == "" || e.CourseID == filter.CourseID)
}

func (repo *enrollmentRepository) query(filter enrollment.QueryFilter) []enrollment.Enrollment {
	enrollments := make([]enrollment.Enrollment, 0)
	for _, e := range repo.db.table {
		if matches(e, filter) {
			enrollments = append(enrollments, cloneEnrollment(*e))
		}
	}
	sort.SliceStable(enrollments, func(i, j int) bool {
		return newerFirst(enrollments[i].EnrolledAt, enrollments[j].EnrolledAt, enrollments[i].ID, enrollments[j].ID)
	})
	return enrollments
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, stored := range repo.db.table {
		if stored.StudentID == e.StudentID && stored.CourseID == e.CourseID {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
	}
	stored := cloneEnrollment(e)
	repo.db.table[e.ID] = &stored
	return cloneEnrollment(stored), nil
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, id string) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return cloneEnrollment(*e), nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) FindEnrollment(_ context.Context, studentID, courseID string) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	filter := enrollment.QueryFilter{StudentID: studentID, CourseID: courseID}
	for _, e := range repo.db.table {
		if matches(e, filter) {
			return cloneEnrollment(*e), nil
		}
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(filter), nil
}

func (repo *enrollmentRepository) CountEnrollments(_ context.Context, filter enrollment.QueryFilter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.query(filter)), nil
}

func (repo *enrollmentRepository) UpdateProgress(_ context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.table[e.ID]
	if !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	if stored.Version != e.Version {
		return enrollment.Enrollment{}, enrollment.ErrVersionMismatch
	}
	updated := cloneEnrollment(*stored)
	updated.Progress = append([]enrollment.ModuleProgress{}, e.Progress...)
	updated.ProgressPercentage = e.ProgressPercentage
	updated.CompletedAt = e.CompletedAt
	updated.Version++
	repo.db.table[e.ID] = &updated
	return cloneEnrollment(updated), nil
}

func (repo *enrollmentRepository) DeleteEnrollment(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return enrollment.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollments(_ context.Context, filter enrollment.QueryFilter) (int, error) {
	if filter == (enrollment.QueryFilter{}) {
		return 0, errors.New("deleting enrollments: empty filter")
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	var deleted int
	for id, e := range repo.db.table {
		if matches(e, filter) {
			delete(repo.db.table, id)
			deleted++
		}
	}
	return deleted, nil
}

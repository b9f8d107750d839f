package dummydb

import (
	"context"
	"sort"

	"github.com/edupulse/edupulse/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

// clone detaches the slices of crs from the stored row.
func cloneCourse(crs course.Course) course.Course {
	crs.Modules = append([]course.Module{}, crs.Modules...)
	crs.EnrolledStudents = append([]string{}, crs.EnrolledStudents...)
	return crs
}

func (repo *courseRepository) query(filter course.QueryFilter) []course.Course {
	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		if filter.InstructorID != "" && c.InstructorID != filter.InstructorID {
			continue
		}
		if filter.PublishedOnly && !c.IsPublished {
			continue
		}
		courses = append(courses, cloneCourse(*c))
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return newerFirst(courses[i].CreatedAt, courses[j].CreatedAt, courses[i].ID, courses[j].ID)
	})
	return courses
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := cloneCourse(crs)
	repo.db.table[crs.ID] = &stored
	return cloneCourse(stored), nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return cloneCourse(*crs), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(filter), nil
}

func (repo *courseRepository) CountCourses(_ context.Context, filter course.QueryFilter) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.query(filter)), nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.table[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	updated := cloneCourse(crs)
	updated.EnrolledStudents = stored.EnrolledStudents
	updated.InstructorID = stored.InstructorID
	updated.CreatedAt = stored.CreatedAt
	repo.db.table[crs.ID] = &updated
	return cloneCourse(updated), nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return course.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *courseRepository) AddStudent(_ context.Context, courseID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.table[courseID]
	if !ok {
		return course.ErrNotFound
	}
	updated := cloneCourse(*crs)
	updated.AddStudent(studentID)
	repo.db.table[courseID] = &updated
	return nil
}

func (repo *courseRepository) RemoveStudent(_ context.Context, courseID, studentID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs, ok := repo.db.table[courseID]
	if !ok {
		return course.ErrNotFound
	}
	updated := cloneCourse(*crs)
	updated.RemoveStudent(studentID)
	repo.db.table[courseID] = &updated
	return nil
}

// Package admin composes the user, course and enrollment services for dashboards and account removal.
package admin

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/policy"
	"github.com/edupulse/edupulse/core/user"
)

var ErrDeleteAdmin = errors.New("admin accounts cannot be deleted")

type (
	StudentStats struct {
		TotalCourses      int                 `json:"total_courses"`
		CompletedCourses  int                 `json:"completed_courses"`
		InProgressCourses int                 `json:"in_progress_courses"`
		Enrollments       []enrollment.Detail `json:"enrollments"`
	}

	InstructorStats struct {
		TotalCourses     int             `json:"total_courses"`
		TotalStudents    int             `json:"total_students"`
		PublishedCourses int             `json:"published_courses"`
		Courses          []course.Course `json:"courses"`
	}

	AdminStats struct {
		TotalUsers       int `json:"total_users"`
		TotalCourses     int `json:"total_courses"`
		TotalEnrollments int `json:"total_enrollments"`
		TotalStudents    int `json:"total_students"`
		TotalInstructors int `json:"total_instructors"`
	}

	Service struct {
		users       *user.Service
		courses     *course.Service
		enrollments *enrollment.Service
	}
)

func NewService(users *user.Service, courses *course.Service, enrollments *enrollment.Service) *Service {
	return &Service{users: users, courses: courses, enrollments: enrollments}
}

// Dashboard returns the statistics of the caller's role:
// *StudentStats, *InstructorStats or *AdminStats.
func (svc *Service) Dashboard(ctx context.Context, caller policy.Caller) (interface{}, error) {
	switch caller.Role {
	case user.RoleStudent:
		return svc.studentStats(ctx, caller.ID)
	case user.RoleInstructor:
		return svc.instructorStats(ctx, caller.ID)
	case user.RoleAdmin:
		return svc.adminStats(ctx)
	default:
		return nil, policy.ErrNotOwner
	}
}

func (svc *Service) studentStats(ctx context.Context, studentID string) (*StudentStats, error) {
	details, err := svc.enrollments.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	completed := lo.CountBy(details, func(d enrollment.Detail) bool { return d.IsComplete() })
	return &StudentStats{
		TotalCourses:      len(details),
		CompletedCourses:  completed,
		InProgressCourses: len(details) - completed,
		Enrollments:       details,
	}, nil
}

func (svc *Service) instructorStats(ctx context.Context, instructorID string) (*InstructorStats, error) {
	courses, err := svc.courses.Query(ctx, course.QueryFilter{InstructorID: instructorID})
	if err != nil {
		return nil, errors.Wrap(err, "querying instructor courses")
	}
	return &InstructorStats{
		TotalCourses:     len(courses),
		TotalStudents:    lo.SumBy(courses, func(c course.Course) int { return len(c.EnrolledStudents) }),
		PublishedCourses: lo.CountBy(courses, func(c course.Course) bool { return c.IsPublished }),
		Courses:          courses,
	}, nil
}

func (svc *Service) adminStats(ctx context.Context) (*AdminStats, error) {
	var (
		stats AdminStats
		err   error
	)
	if stats.TotalUsers, err = svc.users.Count(ctx, user.QueryFilter{}); err != nil {
		return nil, errors.Wrap(err, "counting users")
	}
	if stats.TotalStudents, err = svc.users.Count(ctx, user.QueryFilter{Role: user.RoleStudent}); err != nil {
		return nil, errors.Wrap(err, "counting students")
	}
	if stats.TotalInstructors, err = svc.users.Count(ctx, user.QueryFilter{Role: user.RoleInstructor}); err != nil {
		return nil, errors.Wrap(err, "counting instructors")
	}
	if stats.TotalCourses, err = svc.courses.Count(ctx, course.QueryFilter{}); err != nil {
		return nil, errors.Wrap(err, "counting courses")
	}
	if stats.TotalEnrollments, err = svc.enrollments.Count(ctx, enrollment.QueryFilter{}); err != nil {
		return nil, errors.Wrap(err, "counting enrollments")
	}
	return &stats, nil
}

// ListUsers returns every account, newest first.
func (svc *Service) ListUsers(ctx context.Context, caller policy.Caller) ([]user.User, error) {
	if err := policy.CanAdminister(caller); err != nil {
		return nil, err
	}
	return svc.users.Query(ctx, user.QueryFilter{})
}

// DeleteUser removes an account along with what it owns:
// the courses of an instructor, the enrollments of a student.
func (svc *Service) DeleteUser(ctx context.Context, caller policy.Caller, id string) error {
	if err := policy.CanAdminister(caller); err != nil {
		return err
	}
	usr, err := svc.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch usr.Role {
	case user.RoleAdmin:
		return core.NewValidationError(ErrDeleteAdmin)
	case user.RoleInstructor:
		if err = svc.courses.DeleteByInstructor(ctx, usr.ID); err != nil {
			return errors.Wrap(err, "deleting instructor courses")
		}
	case user.RoleStudent:
		if err = svc.enrollments.DeleteStudentCascade(ctx, usr.ID); err != nil {
			return errors.Wrap(err, "deleting student enrollments")
		}
	}
	return svc.users.Delete(ctx, usr.ID)
}

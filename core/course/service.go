package course

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/policy"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("course")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		// QueryCourses returns the matching courses, newest first.
		QueryCourses(ctx context.Context, filter QueryFilter) ([]Course, error)
		CountCourses(ctx context.Context, filter QueryFilter) (int, error)
		// UpdateCourse saves metadata and modules. The enrolled-student set is left untouched.
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error
		AddStudent(ctx context.Context, courseID, studentID string) error
		// RemoveStudent removes exactly one occurrence of studentID from the enrolled set.
		RemoveStudent(ctx context.Context, courseID, studentID string) error
	}

	// EnrollmentCleaner removes every enrollment of a course. It runs before the course is deleted.
	EnrollmentCleaner interface {
		DeleteCourseCascade(ctx context.Context, courseID string) error
	}

	Service struct {
		repo    Repository
		cleaner EnrollmentCleaner
	}
)

func NewService(repo Repository, cleaner EnrollmentCleaner) *Service {
	return &Service{repo: repo, cleaner: cleaner}
}

// Create saves a validated NewCourse owned by the caller.
func (svc *Service) Create(ctx context.Context, caller policy.Caller, nc NewCourse) (Course, error) {
	if err := policy.CanCreateCourse(caller); err != nil {
		return Course{}, err
	}
	modules, err := buildModules(nc.Modules, nil)
	if err != nil {
		return Course{}, errors.Wrap(err, "building modules")
	}

	now := time.Now().UTC()
	crs := Course{
		ID:               uuid.NewString(),
		Title:            nc.Title,
		Description:      nc.Description,
		Category:         nc.Category,
		Level:            nc.Level,
		Thumbnail:        nc.Thumbnail,
		InstructorID:     caller.ID,
		Modules:          modules,
		EnrolledStudents: []string{},
		IsPublished:      nc.IsPublished,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) ListPublished(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, QueryFilter{PublishedOnly: true})
}

// ListMine returns the courses owned by the calling instructor.
func (svc *Service) ListMine(ctx context.Context, caller policy.Caller) ([]Course, error) {
	if err := policy.CanTeach(caller); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourses(ctx, QueryFilter{InstructorID: caller.ID})
}

// ListAll returns every course, published or not.
func (svc *Service) ListAll(ctx context.Context, caller policy.Caller) ([]Course, error) {
	if err := policy.CanAdminister(caller); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourses(ctx, QueryFilter{})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter)
}

func (svc *Service) Count(ctx context.Context, filter QueryFilter) (int, error) {
	return svc.repo.CountCourses(ctx, filter)
}

// Update applies a validated UpdateCourse. Existing enrollments keep their module snapshot.
func (svc *Service) Update(ctx context.Context, caller policy.Caller, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err = policy.CanMutateCourse(caller, crs.InstructorID); err != nil {
		return Course{}, err
	}
	if err = uc.apply(&crs); err != nil {
		return Course{}, errors.Wrap(err, "applying update")
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

// Delete removes a course and, first, all of its enrollments.
func (svc *Service) Delete(ctx context.Context, caller policy.Caller, id string) error {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if err = policy.CanMutateCourse(caller, crs.InstructorID); err != nil {
		return err
	}
	return svc.delete(ctx, crs.ID)
}

// DeleteByInstructor removes every course owned by instructorID along with their enrollments.
func (svc *Service) DeleteByInstructor(ctx context.Context, instructorID string) error {
	courses, err := svc.repo.QueryCourses(ctx, QueryFilter{InstructorID: instructorID})
	if err != nil {
		return errors.Wrap(err, "querying instructor courses")
	}
	for _, crs := range courses {
		if err = svc.delete(ctx, crs.ID); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Service) delete(ctx context.Context, id string) error {
	if err := svc.cleaner.DeleteCourseCascade(ctx, id); err != nil {
		return errors.Wrap(err, "deleting course enrollments")
	}
	return svc.repo.DeleteCourse(ctx, id)
}

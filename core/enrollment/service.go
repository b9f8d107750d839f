package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/policy"
	"github.com/edupulse/edupulse/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound         = core.NewNotFoundError("enrollment")
	ErrAlreadyEnrolled  = core.NewConflictError("already enrolled in this course")
	ErrConcurrentUpdate = core.NewConflictError("enrollment was modified concurrently, please retry")

	// ErrVersionMismatch is returned by Repository.UpdateProgress when the stored version moved on.
	ErrVersionMismatch = errors.New("enrollment version mismatch")
)

type (
	Repository interface {
		// CreateEnrollment returns ErrAlreadyEnrolled when the (student, course) pair exists.
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, id string) (Enrollment, error)
		FindEnrollment(ctx context.Context, studentID, courseID string) (Enrollment, error)
		// QueryEnrollments returns the matching enrollments, newest first.
		QueryEnrollments(ctx context.Context, filter QueryFilter) ([]Enrollment, error)
		CountEnrollments(ctx context.Context, filter QueryFilter) (int, error)
		// UpdateProgress saves the progress fields only if the stored version equals e.Version,
		// and returns the enrollment with its version incremented. Otherwise it returns ErrVersionMismatch.
		UpdateProgress(ctx context.Context, e Enrollment) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, id string) error
		DeleteEnrollments(ctx context.Context, filter QueryFilter) (int, error)
	}

	Service struct {
		repo        Repository
		courses     course.Repository
		users       user.Repository
		mailSvc     core.EmailService
		logger      core.Logger
		maxAttempts int
	}
)

func NewService(
	repo Repository,
	courses course.Repository,
	users user.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	maxAttempts := conf.Progress.MaxUpdateAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Service{
		repo:        repo,
		courses:     courses,
		users:       users,
		mailSvc:     mailSvc,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

// Enroll creates the caller's enrollment in courseID, seeded with an incomplete entry per course module.
func (svc *Service) Enroll(ctx context.Context, caller policy.Caller, courseID string) (Enrollment, error) {
	if err := policy.CanEnroll(caller); err != nil {
		return Enrollment{}, err
	}

	crs, err := svc.courses.GetCourse(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}

	if _, err = svc.repo.FindEnrollment(ctx, caller.ID, crs.ID); err == nil {
		return Enrollment{}, ErrAlreadyEnrolled
	} else if !core.IsNotFound(err) {
		return Enrollment{}, errors.Wrap(err, "finding enrollment")
	}

	e := Enrollment{
		ID:         uuid.NewString(),
		StudentID:  caller.ID,
		CourseID:   crs.ID,
		Progress:   NewProgress(crs.ModuleIDs()),
		Version:    1,
		EnrolledAt: NowFunc().UTC(),
	}
	e, err = svc.repo.CreateEnrollment(ctx, e)
	if err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return Enrollment{}, ErrAlreadyEnrolled
		}
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}

	if err = svc.courses.AddStudent(ctx, crs.ID, caller.ID); err != nil {
		if dErr := svc.repo.DeleteEnrollment(ctx, e.ID); dErr != nil {
			svc.logger.Error("rolling back enrollment", errors.Wrap(dErr, "deleting enrollment"))
		}
		return Enrollment{}, errors.Wrap(err, "adding student to course")
	}

	svc.notifyEnrolled(ctx, caller.ID, crs)
	return e, nil
}

// Unenroll deletes the caller's enrollment in courseID. All progress is discarded.
func (svc *Service) Unenroll(ctx context.Context, caller policy.Caller, courseID string) error {
	if err := policy.CanEnroll(caller); err != nil {
		return err
	}

	e, err := svc.repo.FindEnrollment(ctx, caller.ID, courseID)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteEnrollment(ctx, e.ID); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	if err = svc.courses.RemoveStudent(ctx, courseID, caller.ID); err != nil && !core.IsNotFound(err) {
		return errors.Wrap(err, "removing student from course")
	}
	return nil
}

// ListMine returns the caller's enrollments with their courses attached, newest first.
func (svc *Service) ListMine(ctx context.Context, caller policy.Caller) ([]Detail, error) {
	if err := policy.CanEnroll(caller); err != nil {
		return nil, err
	}
	return svc.ListForStudent(ctx, caller.ID)
}

// ListForStudent returns the student's enrollments with their courses attached, newest first.
func (svc *Service) ListForStudent(ctx context.Context, studentID string) ([]Detail, error) {
	enrollments, err := svc.repo.QueryEnrollments(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}

	courses := make(map[string]*course.Course)
	details := make([]Detail, 0, len(enrollments))
	for _, e := range enrollments {
		crs, ok := courses[e.CourseID]
		if !ok {
			c, err := svc.courses.GetCourse(ctx, e.CourseID)
			switch {
			case err == nil:
				crs = &c
			case !core.IsNotFound(err):
				return nil, errors.Wrap(err, "getting enrollment course")
			}
			courses[e.CourseID] = crs
		}
		details = append(details, Detail{Enrollment: e, Course: crs})
	}
	return details, nil
}

// SetModuleCompletion marks moduleID of the caller's enrollment as completed or not and persists the
// recomputed percentage. Writes are version checked: a concurrent update is retried from a fresh read.
func (svc *Service) SetModuleCompletion(
	ctx context.Context,
	caller policy.Caller,
	enrollmentID, moduleID string,
	completed bool,
) (Enrollment, error) {
	for attempt := 1; ; attempt++ {
		e, err := svc.repo.GetEnrollment(ctx, enrollmentID)
		if err != nil {
			return Enrollment{}, err
		}
		if err = policy.CanTrackProgress(caller, e.StudentID); err != nil {
			return Enrollment{}, err
		}

		wasComplete := e.IsComplete()
		changed, err := e.SetModuleCompletion(moduleID, completed, NowFunc())
		if err != nil {
			return Enrollment{}, err
		}
		if !changed {
			return e, nil
		}

		updated, err := svc.repo.UpdateProgress(ctx, e)
		if errors.Cause(err) == ErrVersionMismatch {
			if attempt >= svc.maxAttempts {
				return Enrollment{}, ErrConcurrentUpdate
			}
			continue
		}
		if err != nil {
			return Enrollment{}, errors.Wrap(err, "updating progress")
		}

		if !wasComplete && updated.IsComplete() {
			svc.notifyCompleted(ctx, updated)
		}
		return updated, nil
	}
}

// DeleteCourseCascade removes every enrollment of courseID.
func (svc *Service) DeleteCourseCascade(ctx context.Context, courseID string) error {
	_, err := svc.repo.DeleteEnrollments(ctx, QueryFilter{CourseID: courseID})
	return errors.Wrap(err, "deleting course enrollments")
}

// DeleteStudentCascade removes every enrollment of studentID and takes the student out of the enrolled sets.
func (svc *Service) DeleteStudentCascade(ctx context.Context, studentID string) error {
	enrollments, err := svc.repo.QueryEnrollments(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return errors.Wrap(err, "querying student enrollments")
	}
	courseIDs := lo.Uniq(lo.Map(enrollments, func(e Enrollment, _ int) string { return e.CourseID }))
	for _, courseID := range courseIDs {
		if err = svc.courses.RemoveStudent(ctx, courseID, studentID); err != nil && !core.IsNotFound(err) {
			return errors.Wrap(err, "removing student from course")
		}
	}
	_, err = svc.repo.DeleteEnrollments(ctx, QueryFilter{StudentID: studentID})
	return errors.Wrap(err, "deleting student enrollments")
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, filter)
}

func (svc *Service) Count(ctx context.Context, filter QueryFilter) (int, error) {
	return svc.repo.CountEnrollments(ctx, filter)
}

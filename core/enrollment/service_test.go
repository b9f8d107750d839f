package enrollment_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/policy"
	"github.com/edupulse/edupulse/core/user"
	emailsvc "github.com/edupulse/edupulse/services/email"
	"github.com/edupulse/edupulse/tests"
)

var bgCtx = context.Background()

// racingRepo bumps the stored version behind the service's back before each of its first `races` writes.
type racingRepo struct {
	enrollment.Repository
	races int
}

func (repo *racingRepo) UpdateProgress(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	if repo.races > 0 {
		repo.races--
		stored, err := repo.Repository.GetEnrollment(ctx, e.ID)
		if err != nil {
			return enrollment.Enrollment{}, err
		}
		if _, err = repo.Repository.UpdateProgress(ctx, stored); err != nil {
			return enrollment.Enrollment{}, err
		}
	}
	return repo.Repository.UpdateProgress(ctx, e)
}

// failingCourses refuses to seat students.
type failingCourses struct {
	course.Repository
}

func (failingCourses) AddStudent(context.Context, string, string) error {
	return errors.New("connection reset")
}

type fixture struct {
	stack   *testutil.Stack
	student user.User
	caller  policy.Caller
	course  course.Course
}

func setup(t *testing.T, durations ...int) fixture {
	stack := testutil.NewStack()
	stack.Reset()
	instructor := testutil.CreateUser(t, stack.UserRepo, "Ada", "ada@test.io", "", user.RoleInstructor)
	student := testutil.CreateUser(t, stack.UserRepo, "Linus", "linus@test.io", "", user.RoleStudent)
	return fixture{
		stack:   stack,
		student: student,
		caller:  policy.Caller{ID: student.ID, Role: student.Role},
		course:  testutil.CreateCourse(t, stack.CourseRepo, instructor.ID, "Go", true, durations),
	}
}

func newService(f fixture, repo enrollment.Repository, courses course.Repository, maxAttempts int) *enrollment.Service {
	conf := *f.stack.Conf
	conf.Progress.MaxUpdateAttempts = maxAttempts
	return enrollment.NewService(repo, courses, f.stack.UserRepo, emailsvc.NewConsoleServiceMock(&conf, f.stack.Logger), f.stack.Logger, &conf)
}

func sentSubjects() []string {
	var subjects []string
	for _, msg := range emailsvc.GetSentMessages() {
		subjects = append(subjects, msg.Subject)
	}
	return subjects
}

func TestService_SetModuleCompletion_retries(t *testing.T) {
	tests := []struct {
		name        string
		races       int
		wantErr     error
		wantVersion int
	}{
		{name: "no race", races: 0, wantVersion: 2},
		{name: "lost once", races: 1, wantVersion: 3},
		{name: "lost twice", races: 2, wantVersion: 4},
		{name: "lost every attempt", races: 3, wantErr: enrollment.ErrConcurrentUpdate, wantVersion: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, 10, 20)
			e, err := f.stack.EnrollmentSvc.Enroll(bgCtx, f.caller, f.course.ID)
			require.NoError(t, err)

			repo := &racingRepo{Repository: f.stack.EnrollmentRepo, races: tt.races}
			svc := newService(f, repo, f.stack.CourseRepo, 3)

			_, err = svc.SetModuleCompletion(bgCtx, f.caller, e.ID, "m1", true)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr != nil {
				assert.True(t, core.IsConflict(err))
			}

			stored, err := f.stack.EnrollmentRepo.GetEnrollment(bgCtx, e.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, stored.Version)
			assert.Equal(t, tt.wantErr == nil, stored.Progress[0].Completed)
		})
	}
}

func TestService_SetModuleCompletion_concurrent(t *testing.T) {
	f := setup(t, 10, 20, 5, 25)
	e, err := f.stack.EnrollmentSvc.Enroll(bgCtx, f.caller, f.course.ID)
	require.NoError(t, err)

	svc := newService(f, f.stack.EnrollmentRepo, f.stack.CourseRepo, 100)

	var wg sync.WaitGroup
	errs := make(chan error, len(e.Progress))
	for _, p := range e.Progress {
		wg.Add(1)
		go func(moduleID string) {
			defer wg.Done()
			_, err := svc.SetModuleCompletion(bgCtx, f.caller, e.ID, moduleID, true)
			errs <- err
		}(p.ModuleID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	stored, err := f.stack.EnrollmentRepo.GetEnrollment(bgCtx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.ProgressPercentage)
	assert.Equal(t, 5, stored.Version)
	assert.NotNil(t, stored.CompletedAt)
	assert.Equal(t, []string{"You are enrolled in Go", "Course completed"}, sentSubjects())
}

func TestService_SetModuleCompletion_checks(t *testing.T) {
	f := setup(t, 10)
	e, err := f.stack.EnrollmentSvc.Enroll(bgCtx, f.caller, f.course.ID)
	require.NoError(t, err)
	other := policy.Caller{ID: "someone-else", Role: user.RoleStudent}
	instructor := policy.Caller{ID: f.course.InstructorID, Role: user.RoleInstructor}

	tests := []struct {
		name         string
		caller       policy.Caller
		enrollmentID string
		moduleID     string
		wantErr      error
	}{
		{name: "unknown enrollment", caller: other, enrollmentID: "unknown", moduleID: "m9", wantErr: enrollment.ErrNotFound},
		{name: "other student, unknown module", caller: other, enrollmentID: e.ID, moduleID: "m9", wantErr: policy.ErrNotOwner},
		{name: "instructor", caller: instructor, enrollmentID: e.ID, moduleID: "m1", wantErr: policy.ErrStudentsOnly},
		{name: "unknown module", caller: f.caller, enrollmentID: e.ID, moduleID: "m9", wantErr: enrollment.ErrModuleNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.stack.EnrollmentSvc.SetModuleCompletion(bgCtx, tt.caller, tt.enrollmentID, tt.moduleID, true)
			if err != tt.wantErr {
				t.Errorf("SetModuleCompletion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Enroll(t *testing.T) {
	f := setup(t, 10, 20)

	_, err := f.stack.EnrollmentSvc.Enroll(bgCtx, policy.Caller{ID: f.course.InstructorID, Role: user.RoleInstructor}, f.course.ID)
	assert.Equal(t, policy.ErrStudentsOnly, err)

	_, err = f.stack.EnrollmentSvc.Enroll(bgCtx, f.caller, "unknown")
	assert.Equal(t, course.ErrNotFound, err)

	e, err := f.stack.EnrollmentSvc.Enroll(bgCtx, f.caller, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, []string{e.Progress[0].ModuleID, e.Progress[1].ModuleID})

	_, err = f.stack.EnrollmentSvc.Enroll(bgCtx, f.caller, f.course.ID)
	assert.Equal(t, enrollment.ErrAlreadyEnrolled, err)

	crs, err := f.stack.CourseRepo.GetCourse(bgCtx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.student.ID}, crs.EnrolledStudents)
}

func TestService_Enroll_rollback(t *testing.T) {
	f := setup(t, 10)
	svc := newService(f, f.stack.EnrollmentRepo, failingCourses{f.stack.CourseRepo}, 3)

	_, err := svc.Enroll(bgCtx, f.caller, f.course.ID)
	require.Error(t, err)

	_, err = f.stack.EnrollmentRepo.FindEnrollment(bgCtx, f.student.ID, f.course.ID)
	assert.Equal(t, enrollment.ErrNotFound, err, "the enrollment is rolled back")
	assert.Empty(t, emailsvc.GetSentMessages())
}

func TestService_notifications_missingStudent(t *testing.T) {
	f := setup(t, 10)
	e, err := f.stack.EnrollmentSvc.Enroll(bgCtx, f.caller, f.course.ID)
	require.NoError(t, err)
	emailsvc.ResetSentMessages()

	require.NoError(t, f.stack.UserRepo.DeleteUser(bgCtx, f.student.ID))
	e, err = f.stack.EnrollmentSvc.SetModuleCompletion(bgCtx, f.caller, e.ID, "m1", true)
	require.NoError(t, err)
	assert.True(t, e.IsComplete())
	assert.Empty(t, emailsvc.GetSentMessages())
}

func TestService_DeleteStudentCascade(t *testing.T) {
	f := setup(t, 10)
	other := testutil.CreateCourse(t, f.stack.CourseRepo, f.course.InstructorID, "Rust", true, []int{5})
	for _, id := range []string{f.course.ID, other.ID} {
		_, err := f.stack.EnrollmentSvc.Enroll(bgCtx, f.caller, id)
		require.NoError(t, err)
	}

	require.NoError(t, f.stack.EnrollmentSvc.DeleteStudentCascade(bgCtx, f.student.ID))

	count, err := f.stack.EnrollmentSvc.Count(bgCtx, enrollment.QueryFilter{StudentID: f.student.ID})
	require.NoError(t, err)
	assert.Zero(t, count)
	for _, id := range []string{f.course.ID, other.ID} {
		crs, err := f.stack.CourseRepo.GetCourse(bgCtx, id)
		require.NoError(t, err)
		assert.Empty(t, crs.EnrolledStudents)
	}

	// nothing left to delete is fine
	assert.NoError(t, f.stack.EnrollmentSvc.DeleteStudentCascade(bgCtx, f.student.ID))
}

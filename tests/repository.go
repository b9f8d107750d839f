package testutil

import (
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
	"github.com/edupulse/edupulse/core/user"
)

// RepositorySuite checks the contract every storage engine must honor. The repositories must start empty.
func RepositorySuite(t *testing.T, users user.Repository, courses course.Repository, enrollments enrollment.Repository) {
	// mongo keeps milliseconds
	now := time.Now().UTC().Truncate(time.Millisecond)
	pwd := "Sup3r-S3cret!"

	instructor := CreateUser(t, users, "Ada", "ada@test.io", pwd, user.RoleInstructor, now)
	s1 := CreateUser(t, users, "Linus", "linus@test.io", pwd, user.RoleStudent, now.Add(time.Second))
	s2 := CreateUser(t, users, "Grace", "grace@test.io", pwd, user.RoleStudent, now.Add(2*time.Second))

	t.Run("users", func(t *testing.T) {
		dup := instructor
		dup.ID = uuid.NewString()
		_, err := users.CreateUser(bgCtx, dup)
		assert.Equal(t, user.ErrEmailExists, err)

		got, err := users.GetUser(bgCtx, user.GetFilter{Email: "ada@test.io"})
		require.NoError(t, err)
		assert.Equal(t, instructor.ID, got.ID)
		assert.NoError(t, got.CheckPassword(pwd))
		_, err = users.GetUser(bgCtx, user.GetFilter{ID: "unknown"})
		assert.Equal(t, user.ErrNotFound, err)

		list, err := users.QueryUsers(bgCtx, user.QueryFilter{})
		require.NoError(t, err)
		if assert.Len(t, list, 3) {
			assert.Equal(t, s2.ID, list[0].ID, "newest first")
		}
		count, err := users.CountUsers(bgCtx, user.QueryFilter{Role: user.RoleStudent})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		tmp := CreateUser(t, users, "Tmp", "tmp@test.io", pwd, user.RoleStudent, now)
		require.NoError(t, users.DeleteUser(bgCtx, tmp.ID))
		assert.Equal(t, user.ErrNotFound, users.DeleteUser(bgCtx, tmp.ID))
	})

	t.Run("courses", func(t *testing.T) {
		crs := CreateCourse(t, courses, instructor.ID, "Go", true, []int{10, 20}, now)
		CreateCourse(t, courses, instructor.ID, "Draft", false, []int{5}, now.Add(time.Second))

		for _, id := range []string{s1.ID, s2.ID, s1.ID} {
			require.NoError(t, courses.AddStudent(bgCtx, crs.ID, id))
		}
		require.NoError(t, courses.RemoveStudent(bgCtx, crs.ID, s1.ID))
		got, err := courses.GetCourse(bgCtx, crs.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{s1.ID, s2.ID}, got.EnrolledStudents, "exactly one occurrence is removed")
		assert.Equal(t, crs.ModuleIDs(), got.ModuleIDs())

		got.Title = "Go, revised"
		got.EnrolledStudents = nil
		updated, err := courses.UpdateCourse(bgCtx, got)
		require.NoError(t, err)
		assert.Equal(t, "Go, revised", updated.Title)
		assert.Len(t, updated.EnrolledStudents, 2, "updates leave the enrolled set alone")

		published, err := courses.QueryCourses(bgCtx, course.QueryFilter{PublishedOnly: true})
		require.NoError(t, err)
		assert.Len(t, published, 1)
		mine, err := courses.QueryCourses(bgCtx, course.QueryFilter{InstructorID: instructor.ID})
		require.NoError(t, err)
		if assert.Len(t, mine, 2) {
			assert.Equal(t, "Draft", mine[0].Title, "newest first")
		}

		require.NoError(t, courses.DeleteCourse(bgCtx, crs.ID))
		_, err = courses.GetCourse(bgCtx, crs.ID)
		assert.Equal(t, course.ErrNotFound, err)
		assert.Equal(t, course.ErrNotFound, courses.AddStudent(bgCtx, crs.ID, s1.ID))
	})

	t.Run("enrollments", func(t *testing.T) {
		c1 := CreateCourse(t, courses, instructor.ID, "Rust", true, []int{10, 20}, now)
		c2 := CreateCourse(t, courses, instructor.ID, "Zig", true, []int{10}, now)
		e := enrollment.Enrollment{
			ID:         uuid.NewString(),
			StudentID:  s1.ID,
			CourseID:   c1.ID,
			Progress:   enrollment.NewProgress([]string{"m1", "m2"}),
			Version:    1,
			EnrolledAt: now,
		}
		_, err := enrollments.CreateEnrollment(bgCtx, e)
		require.NoError(t, err)

		dup := e
		dup.ID = uuid.NewString()
		_, err = enrollments.CreateEnrollment(bgCtx, dup)
		assert.Equal(t, enrollment.ErrAlreadyEnrolled, err)

		other := dup
		other.CourseID = c2.ID
		other.EnrolledAt = now.Add(time.Second)
		_, err = enrollments.CreateEnrollment(bgCtx, other)
		require.NoError(t, err)

		found, err := enrollments.FindEnrollment(bgCtx, s1.ID, c1.ID)
		require.NoError(t, err)
		assert.Equal(t, e.ID, found.ID)
		_, err = enrollments.FindEnrollment(bgCtx, s2.ID, c1.ID)
		assert.Equal(t, enrollment.ErrNotFound, err)

		list, err := enrollments.QueryEnrollments(bgCtx, enrollment.QueryFilter{StudentID: s1.ID})
		require.NoError(t, err)
		if assert.Len(t, list, 2) {
			assert.Equal(t, other.ID, list[0].ID, "newest first")
		}

		stale := found
		_, err = found.SetModuleCompletion("m1", true, now)
		require.NoError(t, err)
		updated, err := enrollments.UpdateProgress(bgCtx, found)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, 50, updated.ProgressPercentage)
		assert.True(t, updated.Progress[0].Completed)

		_, err = enrollments.UpdateProgress(bgCtx, stale)
		assert.Equal(t, enrollment.ErrVersionMismatch, err)

		// completion stamps round-trip
		_, err = updated.SetModuleCompletion("m2", true, now)
		require.NoError(t, err)
		updated, err = enrollments.UpdateProgress(bgCtx, updated)
		require.NoError(t, err)
		require.NotNil(t, updated.CompletedAt)
		_, err = updated.SetModuleCompletion("m2", false, now)
		require.NoError(t, err)
		updated, err = enrollments.UpdateProgress(bgCtx, updated)
		require.NoError(t, err)
		assert.Nil(t, updated.CompletedAt)
		stored, err := enrollments.GetEnrollment(bgCtx, e.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.CompletedAt)
		assert.Equal(t, 4, stored.Version)

		n, err := enrollments.DeleteEnrollments(bgCtx, enrollment.QueryFilter{CourseID: c2.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.NoError(t, enrollments.DeleteEnrollment(bgCtx, e.ID))
		assert.Equal(t, enrollment.ErrNotFound, enrollments.DeleteEnrollment(bgCtx, e.ID))
		count, err := enrollments.CountEnrollments(bgCtx, enrollment.QueryFilter{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("equal timestamps order by id", func(t *testing.T) {
		tied := now.Add(time.Hour)
		teacher := CreateUser(t, users, "Barbara", "barbara@test.io", pwd, user.RoleInstructor, tied)

		var courseIDs, enrollmentIDs []string
		for i := 0; i < 4; i++ {
			crs := CreateCourse(t, courses, teacher.ID, "Tied", true, []int{10}, tied)
			courseIDs = append(courseIDs, crs.ID)

			e := enrollment.Enrollment{
				ID:         uuid.NewString(),
				StudentID:  s2.ID,
				CourseID:   crs.ID,
				Progress:   enrollment.NewProgress(crs.ModuleIDs()),
				Version:    1,
				EnrolledAt: tied,
			}
			_, err := enrollments.CreateEnrollment(bgCtx, e)
			require.NoError(t, err)
			enrollmentIDs = append(enrollmentIDs, e.ID)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(courseIDs)))
		sort.Sort(sort.Reverse(sort.StringSlice(enrollmentIDs)))

		for i := 0; i < 5; i++ {
			crsList, err := courses.QueryCourses(bgCtx, course.QueryFilter{InstructorID: teacher.ID})
			require.NoError(t, err)
			assert.Equal(t, courseIDs, lo.Map(crsList, func(c course.Course, _ int) string { return c.ID }))

			eList, err := enrollments.QueryEnrollments(bgCtx, enrollment.QueryFilter{StudentID: s2.ID})
			require.NoError(t, err)
			assert.Equal(t, enrollmentIDs, lo.Map(eList, func(e enrollment.Enrollment, _ int) string { return e.ID }))
		}
	})
}

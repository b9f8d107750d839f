package dummydb

import (
	"context"
	"testing"
	"time"

	"github.com/edupulse/edupulse/core/course"
	"github.com/edupulse/edupulse/core/enrollment"
)

var bgCtx = context.Background()

func newTestEnrollment(id, studentID, courseID string, enrolledAt time.Time) enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:         id,
		StudentID:  studentID,
		CourseID:   courseID,
		Progress:   enrollment.NewProgress([]string{"m1", "m2"}),
		Version:    1,
		EnrolledAt: enrolledAt,
	}
}

func TestEnrollmentRepository(t *testing.T) {
	db, _ := Open()
	repo := NewEnrollmentRepository(db)
	now := time.Now().UTC()

	if _, err := repo.CreateEnrollment(bgCtx, newTestEnrollment("e1", "s1", "c1", now)); err != nil {
		t.Fatalf("CreateEnrollment() error = %v", err)
	}
	if _, err := repo.CreateEnrollment(bgCtx, newTestEnrollment("e2", "s1", "c1", now)); err != enrollment.ErrAlreadyEnrolled {
		t.Errorf("CreateEnrollment() duplicate error = %v, want %v", err, enrollment.ErrAlreadyEnrolled)
	}
	if _, err := repo.CreateEnrollment(bgCtx, newTestEnrollment("e3", "s1", "c2", now.Add(time.Second))); err != nil {
		t.Fatalf("CreateEnrollment() error = %v", err)
	}

	t.Run("query newest first", func(t *testing.T) {
		got, _ := repo.QueryEnrollments(bgCtx, enrollment.QueryFilter{StudentID: "s1"})
		if len(got) != 2 || got[0].ID != "e3" || got[1].ID != "e1" {
			t.Errorf("QueryEnrollments() = %+v", got)
		}
	})

	t.Run("version check", func(t *testing.T) {
		e, _ := repo.GetEnrollment(bgCtx, "e1")
		stale := e
		if _, err := e.SetModuleCompletion("m1", true, now); err != nil {
			t.Fatal(err)
		}
		updated, err := repo.UpdateProgress(bgCtx, e)
		if err != nil {
			t.Fatalf("UpdateProgress() error = %v", err)
		}
		if updated.Version != 2 || updated.ProgressPercentage != 50 {
			t.Errorf("UpdateProgress() = %+v", updated)
		}
		if _, err = repo.UpdateProgress(bgCtx, stale); err != enrollment.ErrVersionMismatch {
			t.Errorf("UpdateProgress() stale error = %v, want %v", err, enrollment.ErrVersionMismatch)
		}
		if _, err = repo.UpdateProgress(bgCtx, newTestEnrollment("unknown", "s1", "c1", now)); err != enrollment.ErrNotFound {
			t.Errorf("UpdateProgress() unknown error = %v, want %v", err, enrollment.ErrNotFound)
		}
	})

	t.Run("returned values are detached", func(t *testing.T) {
		e, _ := repo.GetEnrollment(bgCtx, "e3")
		e.Progress[0].Completed = true
		stored, _ := repo.GetEnrollment(bgCtx, "e3")
		if stored.Progress[0].Completed {
			t.Errorf("mutating a returned enrollment changed the store")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if _, err := repo.DeleteEnrollments(bgCtx, enrollment.QueryFilter{}); err == nil {
			t.Errorf("DeleteEnrollments() with an empty filter must fail")
		}
		n, err := repo.DeleteEnrollments(bgCtx, enrollment.QueryFilter{CourseID: "c2"})
		if err != nil || n != 1 {
			t.Errorf("DeleteEnrollments() = %d, %v; want 1, nil", n, err)
		}
		if err = repo.DeleteEnrollment(bgCtx, "e3"); err != enrollment.ErrNotFound {
			t.Errorf("DeleteEnrollment() error = %v, want %v", err, enrollment.ErrNotFound)
		}
		if count, _ := repo.CountEnrollments(bgCtx, enrollment.QueryFilter{}); count != 1 {
			t.Errorf("CountEnrollments() = %d, want 1", count)
		}
	})
}

func TestCourseRepository_enrolledSet(t *testing.T) {
	db, _ := Open()
	repo := NewCourseRepository(db)
	crs, _ := repo.CreateCourse(bgCtx, course.Course{ID: "c1", InstructorID: "i1", Title: "Go", CreatedAt: time.Now()})

	for _, id := range []string{"s1", "s2", "s1"} {
		if err := repo.AddStudent(bgCtx, crs.ID, id); err != nil {
			t.Fatalf("AddStudent() error = %v", err)
		}
	}
	if err := repo.RemoveStudent(bgCtx, crs.ID, "s1"); err != nil {
		t.Fatalf("RemoveStudent() error = %v", err)
	}
	stored, _ := repo.GetCourse(bgCtx, crs.ID)
	if len(stored.EnrolledStudents) != 2 || !stored.HasStudent("s1") {
		t.Errorf("RemoveStudent() must remove one occurrence; got %v", stored.EnrolledStudents)
	}

	// updates never touch the enrolled set nor the owner
	crs.Title = "Go, revised"
	crs.InstructorID = "i2"
	crs.EnrolledStudents = nil
	updated, err := repo.UpdateCourse(bgCtx, crs)
	if err != nil {
		t.Fatalf("UpdateCourse() error = %v", err)
	}
	if updated.Title != "Go, revised" || updated.InstructorID != "i1" || len(updated.EnrolledStudents) != 2 {
		t.Errorf("UpdateCourse() = %+v", updated)
	}

	if err = repo.AddStudent(bgCtx, "unknown", "s1"); err != course.ErrNotFound {
		t.Errorf("AddStudent() error = %v, want %v", err, course.ErrNotFound)
	}
}

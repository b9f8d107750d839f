// Package policy holds the role and ownership rules gating every mutation.
// Each rule is a pure predicate: it returns nil to allow, or a core.AccessDeniedError to deny.
package policy

import (
	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/user"
)

var (
	ErrStudentsOnly    = core.NewAccessDeniedError("only students can perform this action")
	ErrInstructorsOnly = core.NewAccessDeniedError("only instructors can perform this action")
	ErrAdminOnly       = core.NewAccessDeniedError("access denied, admin only")
	ErrNotOwner        = core.NewAccessDeniedError("permission denied")
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	ID   string
	Role user.Role
}

func (c Caller) IsAdmin() bool { return c.Role == user.RoleAdmin }

// CanEnroll allows students to enroll in and unenroll from courses.
func CanEnroll(c Caller) error {
	if c.Role != user.RoleStudent {
		return ErrStudentsOnly
	}
	return nil
}

// CanTrackProgress allows a student to update the progress of their own enrollment.
func CanTrackProgress(c Caller, studentID string) error {
	if err := CanEnroll(c); err != nil {
		return err
	}
	if c.ID == "" || c.ID != studentID {
		return ErrNotOwner
	}
	return nil
}

// CanCreateCourse allows instructors and admins to author courses.
func CanCreateCourse(c Caller) error {
	if c.Role != user.RoleInstructor && c.Role != user.RoleAdmin {
		return ErrInstructorsOnly
	}
	return nil
}

// CanTeach allows instructors to list the courses they own.
func CanTeach(c Caller) error {
	if c.Role != user.RoleInstructor {
		return ErrInstructorsOnly
	}
	return nil
}

// CanMutateCourse allows the owning instructor or an admin to update or delete a course.
func CanMutateCourse(c Caller, instructorID string) error {
	if c.IsAdmin() {
		return nil
	}
	if c.Role == user.RoleInstructor && c.ID != "" && c.ID == instructorID {
		return nil
	}
	return ErrNotOwner
}

// CanAdminister allows admins to delete users and list every user or course.
func CanAdminister(c Caller) error {
	if !c.IsAdmin() {
		return ErrAdminOnly
	}
	return nil
}

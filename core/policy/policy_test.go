package policy

import (
	"testing"

	"github.com/edupulse/edupulse/core/user"
)

var (
	student    = Caller{ID: "s1", Role: user.RoleStudent}
	instructor = Caller{ID: "i1", Role: user.RoleInstructor}
	admin      = Caller{ID: "a1", Role: user.RoleAdmin}
	anonymous  = Caller{}
)

func TestRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    func() error
		wantErr error
	}{
		{name: "student enrolls", rule: func() error { return CanEnroll(student) }},
		{name: "instructor enrolls", rule: func() error { return CanEnroll(instructor) }, wantErr: ErrStudentsOnly},
		{name: "admin enrolls", rule: func() error { return CanEnroll(admin) }, wantErr: ErrStudentsOnly},

		{name: "owner tracks progress", rule: func() error { return CanTrackProgress(student, "s1") }},
		{name: "other student tracks progress", rule: func() error { return CanTrackProgress(student, "s2") }, wantErr: ErrNotOwner},
		{name: "admin tracks progress", rule: func() error { return CanTrackProgress(admin, "s1") }, wantErr: ErrStudentsOnly},
		{name: "anonymous tracks ownerless progress", rule: func() error { return CanTrackProgress(Caller{Role: user.RoleStudent}, "") }, wantErr: ErrNotOwner},

		{name: "instructor creates", rule: func() error { return CanCreateCourse(instructor) }},
		{name: "admin creates", rule: func() error { return CanCreateCourse(admin) }},
		{name: "student creates", rule: func() error { return CanCreateCourse(student) }, wantErr: ErrInstructorsOnly},

		{name: "instructor teaches", rule: func() error { return CanTeach(instructor) }},
		{name: "admin teaches", rule: func() error { return CanTeach(admin) }, wantErr: ErrInstructorsOnly},

		{name: "owner mutates", rule: func() error { return CanMutateCourse(instructor, "i1") }},
		{name: "admin mutates", rule: func() error { return CanMutateCourse(admin, "i1") }},
		{name: "other instructor mutates", rule: func() error { return CanMutateCourse(instructor, "i2") }, wantErr: ErrNotOwner},
		{name: "student mutates", rule: func() error { return CanMutateCourse(Caller{ID: "i1", Role: user.RoleStudent}, "i1") }, wantErr: ErrNotOwner},
		{name: "anonymous mutates", rule: func() error { return CanMutateCourse(anonymous, "") }, wantErr: ErrNotOwner},

		{name: "admin administers", rule: func() error { return CanAdminister(admin) }},
		{name: "instructor administers", rule: func() error { return CanAdminister(instructor) }, wantErr: ErrAdminOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rule(); err != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package user_test

import (
	"context"
	"testing"

	"github.com/edupulse/edupulse/core"
	"github.com/edupulse/edupulse/core/user"
	dummydb "github.com/edupulse/edupulse/storage/database/dummy"
)

func newService(t *testing.T) (*user.Service, user.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewUserRepository(db)
	return user.NewService(repo), repo
}

func TestService_EnsureAdmin(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, " Root ", " Root@EduPulse.test ", "Sup3r-S3cret!")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin() = (%t, %v), want (true, nil)", created, err)
	}
	usr, err := repo.GetUser(ctx, user.GetFilter{Email: "root@edupulse.test"})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if usr.Name != "Root" || !usr.IsAdmin() {
		t.Errorf("EnsureAdmin() stored (%s, %s), want (Root, admin)", usr.Name, usr.Role)
	}
	if err = usr.CheckPassword("Sup3r-S3cret!"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	created, err = svc.EnsureAdmin(ctx, "Other", "root@edupulse.test", "An0ther-S3cret!")
	if err != nil || created {
		t.Errorf("EnsureAdmin() second call = (%t, %v), want (false, nil)", created, err)
	}
	if n, _ := repo.CountUsers(ctx, user.QueryFilter{}); n != 1 {
		t.Errorf("CountUsers() = %d, want 1", n)
	}
}

func TestService_Create(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	nu := user.NewUser{Name: "Ada", Email: "ada@edupulse.test", Password: "Sup3r-S3cret!", Role: user.RoleInstructor}
	usr, err := svc.Create(ctx, nu)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if usr.ID == "" || usr.Role != user.RoleInstructor || len(usr.PasswordHash) == 0 {
		t.Errorf("Create() got %+v", usr)
	}

	if _, err = svc.Create(ctx, nu); !core.IsValidation(err) {
		t.Errorf("Create() duplicate error = %v, want a validation error", err)
	}
	if err = svc.CheckUniqueness(ctx, "ada@edupulse.test"); !core.IsValidation(err) {
		t.Errorf("CheckUniqueness() error = %v, want a validation error", err)
	}
	if err = svc.CheckUniqueness(ctx, "bob@edupulse.test"); err != nil {
		t.Errorf("CheckUniqueness() unexpected error = %v", err)
	}
}

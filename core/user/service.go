package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/edupulse/edupulse/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("user")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		// CreateUser returns ErrEmailExists when the email is taken.
		CreateUser(ctx context.Context, user User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers returns the matching users, newest first.
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		CountUsers(ctx context.Context, filter QueryFilter) (int, error)
		UpdateUser(ctx context.Context, user User) (User, error)
		DeleteUser(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(ctx context.Context, email string) error {
	_, err := svc.repo.GetUser(ctx, GetFilter{Email: email})
	switch {
	case err == nil:
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	case core.IsNotFound(err):
		return nil
	default:
		return err
	}
}

// Create registers a validated NewUser.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err == ErrEmailExists {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
	}
	return usr, err
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter)
}

func (svc *Service) Count(ctx context.Context, filter QueryFilter) (int, error) {
	return svc.repo.CountUsers(ctx, filter)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteUser(ctx, id)
}

// EnsureAdmin creates an admin account with the given credentials unless the email is already registered.
// It reports whether an account was created.
func (svc *Service) EnsureAdmin(ctx context.Context, name, email, pwd string) (bool, error) {
	email = core.CleanString(email, true /* lower */)
	if _, err := svc.repo.GetUser(ctx, GetFilter{Email: email}); err == nil {
		return false, nil
	} else if !core.IsNotFound(err) {
		return false, err
	}

	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      core.CleanString(name),
		Email:     email,
		Role:      RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return false, err
	}
	if _, err := svc.repo.CreateUser(ctx, usr); err != nil {
		return false, err
	}
	return true, nil
}

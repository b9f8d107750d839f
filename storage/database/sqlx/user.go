package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/edupulse/edupulse/core/user"
)

const userColumns = "id, name, email, role, password_hash, created_at, updated_at"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :name, :email, :role, :password_hash, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, usr); err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	where := sq.Eq{}
	if filter.ID != "" {
		where["id"] = filter.ID
	}
	if filter.Email != "" {
		where["email"] = filter.Email
	}
	if len(where) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	err := get(ctx, repo.db, &usr, psql.Select(userColumns).From("users").Where(where).Limit(1))
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "selecting user")
}

func userWhere(filter user.QueryFilter) sq.Eq {
	where := sq.Eq{}
	if filter.Role != "" {
		where["role"] = filter.Role
	}
	return where
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	users := make([]user.User, 0)
	b := psql.Select(userColumns).From("users").Where(userWhere(filter)).OrderBy(newestFirst...)
	err := selectAll(ctx, repo.db, &users, b)
	return users, errors.Wrap(err, "selecting users")
}

func (repo *userRepository) CountUsers(ctx context.Context, filter user.QueryFilter) (int, error) {
	n, err := count(ctx, repo.db, "users", userWhere(filter))
	return n, errors.Wrap(err, "counting users")
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE users SET name = :name, email = :email, role = :role, password_hash = :password_hash,
		updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, usr)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

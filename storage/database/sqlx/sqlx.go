// Package sqlxrepos implements the repositories on postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/edupulse/edupulse/core"
)

const uniqueViolation = "23505"

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	// equal timestamps fall back to the id so pages are deterministic
	newestFirst          = orderBy(core.DBOrdering{Field: "created_at"}, core.DBOrdering{Field: "id"})
	latestEnrolmentFirst = orderBy(core.DBOrdering{Field: "enrolled_at"}, core.DBOrdering{Field: "id"})
)

func orderBy(ords ...core.DBOrdering) []string {
	return lo.Map(ords, func(ord core.DBOrdering, _ int) string { return ord.String() })
}

func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}

// get runs a built query into dest. sql.ErrNoRows is returned as is.
func get(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	stmt, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, q, dest, stmt, args...)
}

func selectAll(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	stmt, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, q, dest, stmt, args...)
}

func exec(ctx context.Context, e sqlx.ExecerContext, b sq.Sqlizer) (sql.Result, error) {
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return e.ExecContext(ctx, stmt, args...)
}

func count(ctx context.Context, q sqlx.QueryerContext, table string, where sq.Eq) (int, error) {
	var n int
	err := get(ctx, q, &n, psql.Select("COUNT(*)").From(table).Where(where))
	return n, err
}

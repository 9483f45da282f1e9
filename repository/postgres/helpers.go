package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tracker/repository/query"
)

// pgx maps DATE and TIMESTAMPTZ to time.Time natively.
var dialect = query.Dialect{}

// rebind turns "?" placeholders into PostgreSQL's $n form.
func rebind(stmt string) string {
	return sqlx.Rebind(sqlx.DOLLAR, stmt)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func nullTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func nullString(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

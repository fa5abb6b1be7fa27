package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"jobportal-backend/internal/shared/apperr"
)

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint failure,
// optionally for the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	return isConstraint(err, uniqueViolation, constraint)
}

// IsCheckViolation reports whether err is a failed CHECK constraint.
func IsCheckViolation(err error, constraint string) bool {
	return isConstraint(err, checkViolation, constraint)
}

func isConstraint(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// Unavailable classifies a driver failure so handlers answer 503 rather than 500.
// Context cancellation is passed through untouched.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Unavailable(op, err)
}

// HealthCheck pings the database within ctx.
func HealthCheck(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	return database.PingContext(ctx)
}

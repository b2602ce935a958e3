package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgExclusionViolation  = "23P01"
)

func IsUniqueViolationError(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func IsForeignKeyViolationError(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

// IsExclusionViolationError reports an exclusion constraint violation,
// e.g. a second active routine for the same user.
func IsExclusionViolationError(err error) bool {
	return pgErrorCode(err) == pgExclusionViolation
}

// pgErrorCode returns the SQLSTATE of a wrapped postgres error, or "".
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

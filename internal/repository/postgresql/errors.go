package postgresql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation   = "23505"
	pgLockNotAvailable  = "55P03"
	activeDelegationIdx = "uq_delegations_active_manager"
)

func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isLockNotAvailable(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgLockNotAvailable
}

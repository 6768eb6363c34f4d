package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-tracker/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isTransient errores que el cliente puede reintentar: conflicto de serialización, deadlock,
// lock_timeout, cancelación por statement_timeout o pérdida de conexión.
func isTransient(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

// wrapErr envuelve un error de PostgreSQL con la operación y, si aplica, con domain.ErrTransient.
func wrapErr(op string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/storefront-inventory/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isCheckViolation verifica si un error es una violación de CHECK (23514), p.ej. quantity >= 0.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514" // check_violation
	}
	return false
}

// pgCode devuelve el SQLSTATE del error, o "" si no viene del servidor.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// storeErr clasifica un error del driver: violación de CHECK es ErrInsufficientStock, valor fuera
// del rango de la columna es ErrInvalidInput; timeout, espera de lock agotada, cancelación y fallos
// de conexión son ErrStoreUnavailable. El resto pasa envuelto tal cual.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isCheckViolation(err):
		return fmt.Errorf("%w: %w", domain.ErrInsufficientStock, err)
	case pgCode(err) == "22003": // numeric_value_out_of_range
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	case pgCode(err) == "55P03", pgCode(err) == "57014": // lock_not_available, query_canceled
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), pgconn.Timeout(err):
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	case isConnectionError(err):
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

func isConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Clase 08: connection exception; 57P01..03: admin shutdown / cannot connect now.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P")
	}
	return false
}

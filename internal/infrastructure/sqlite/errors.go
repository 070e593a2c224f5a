package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/storefront-inventory/internal/domain"
)

func isUniqueViolation(err error) bool {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// storeErr traduce errores del driver: CHECK violado es ErrInsufficientStock; BUSY/LOCKED,
// timeouts y cancelaciones son ErrStoreUnavailable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch {
		case sqErr.ExtendedCode == sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %w", domain.ErrInsufficientStock, err)
		case sqErr.Code == sqlite3.ErrBusy, sqErr.Code == sqlite3.ErrLocked,
			sqErr.Code == sqlite3.ErrIoErr, sqErr.Code == sqlite3.ErrCantOpen:
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

package storage

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = types.ErrNotFound
	// ErrConstraintViolation is returned on uniqueness or foreign-key violations
	ErrConstraintViolation = types.ErrConstraintViolation
	// ErrStoreUnavailable is returned when the database cannot be reached or written
	ErrStoreUnavailable = types.ErrStoreUnavailable
	// ErrEncoding is returned when a stored value cannot be decoded
	ErrEncoding = types.ErrEncoding
)

// aliases used by the driver files
var (
	errConstraint  = ErrConstraintViolation
	errUnavailable = ErrStoreUnavailable
)

var errorClasses = []error{ErrNotFound, ErrConstraintViolation, ErrStoreUnavailable, ErrEncoding}

// classify wraps err with op and with the error class it belongs to.
// Errors that already carry a class are only wrapped.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	for _, class := range errorClasses {
		if errors.Is(err, class) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if class := classifyDriverError(err); class != nil {
		return fmt.Errorf("%s: %w: %w", op, class, err)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

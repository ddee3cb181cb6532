package types

import "errors"

// Storage error classes. Errors returned by the storage layer wrap exactly one of
// these together with the underlying driver error.
var (
	// ErrNotFound is returned when an update, delete or lookup targets a row that does not exist
	ErrNotFound = errors.New("not found")
	// ErrConstraintViolation is returned on uniqueness or foreign-key violations
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStoreUnavailable is returned on connection or I/O failures
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEncoding is returned when a stored value cannot be decoded
	ErrEncoding = errors.New("encoding error")
)

// Validation errors
var (
	ErrInvalidIdentity = errors.New("identity must be non-zero")
	ErrInvalidPolicy   = errors.New("unknown conflict policy")
)

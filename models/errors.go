package models

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded marks a storage failure caused by the backend running out
// of capacity, as opposed to any other I/O problem. Check with errors.Is.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ValidationError reports a field that failed the task validation rules.
// Always recoverable: the caller corrects the input and retries.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError reports an operation that referenced an unknown task ID.
// This usually means the caller's view of the collection is stale.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task with ID '%s' not found", e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// StorageError reports a failed persistence write or read. When the cause is
// capacity, it wraps ErrQuotaExceeded so callers can suggest freeing space.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// MigrationError reports a failed schema migration step. The migrator aborts
// the whole chain on the first failure and leaves the stored data untouched.
type MigrationError struct {
	Version string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration to %s failed: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

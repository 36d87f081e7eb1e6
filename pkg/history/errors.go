package history

import (
	"errors"
	"fmt"
)

// errClosed is returned by operations on a closed store.
var errClosed = errors.New("store is closed")

// StorageError describes a failed storage operation.
type StorageError struct {
	// Backend is the store implementation ("sqlite", "memory").
	Backend string

	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// NewStorageError creates a storage error.
func NewStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// RetentionError describes a failed retention run.
type RetentionError struct {
	// RetentionDays is the configured retention window.
	RetentionDays int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention pruning (%d days): %v", e.RetentionDays, e.Err)
}

// Unwrap returns the underlying error.
func (e *RetentionError) Unwrap() error {
	return e.Err
}

package repository

import (
	"errors"
	"fmt"
)

// ErrCorruptCollection is returned by Open when the stored bytes are not a
// JSON array of invoices.
var ErrCorruptCollection = errors.New("stored invoice collection is not valid JSON")

// Error wraps storage failures with the repository operation that hit them.
type Error struct {
	// Op is the repository method that failed (e.g., "Create", "Delete").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("repository: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("repository: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps err as an *Error unless it already is one.
func WrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var repoErr *Error
	if errors.As(err, &repoErr) {
		return err
	}
	return &Error{Op: op, Err: err, Details: details}
}

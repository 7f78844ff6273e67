package invoice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLastItem is returned when removing the only line item of a draft.
	ErrLastItem = errors.New("an invoice needs at least one line item")

	// ErrUnknownItemField is returned for an item column that does not exist.
	ErrUnknownItemField = errors.New("unknown line item field")

	// ErrInvalidDraft marks every error returned by ValidateDraft.
	ErrInvalidDraft = errors.New("invalid invoice draft")
)

// ValidationError describes one rejected field of a draft.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is lets errors.Is(err, ErrInvalidDraft) match any validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDraft
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// formatValidationErrors renders aggregated errors one per line.
func formatValidationErrors(errs []error) string {
	lines := make([]string, 0, len(errs))
	for _, err := range errs {
		lines = append(lines, "  - "+err.Error())
	}
	return fmt.Sprintf("%d problem(s) in invoice draft:\n%s", len(errs), strings.Join(lines, "\n"))
}

package invoice

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"invoicer/pkg/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateDraft checks a draft before it is created or saved. All problems
// are reported together; each one matches errors.Is(err, ErrInvalidDraft).
// The repository does not call this; callers validate at the edge.
func ValidateDraft(d models.Draft) error {
	var result *multierror.Error

	if err := validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate draft: %w", err)
		}
		for _, fe := range fieldErrs {
			result = multierror.Append(result, NewValidationError(fieldPath(fe), fe.Value(), describe(fe)))
		}
	}

	if d.Date.IsZero() {
		result = multierror.Append(result, NewValidationError("date", "", "is required"))
	}
	if d.DueDate.IsZero() {
		result = multierror.Append(result, NewValidationError("dueDate", "", "is required"))
	}
	if !d.Date.IsZero() && !d.DueDate.IsZero() && d.DueDate.Before(d.Date) {
		result = multierror.Append(result, NewValidationError("dueDate", d.DueDate.String(),
			fmt.Sprintf("must not be before the invoice date %s", d.Date)))
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = formatValidationErrors
	return result.ErrorOrNil()
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

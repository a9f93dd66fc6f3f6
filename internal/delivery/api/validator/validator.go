// Package validator adapts go-playground/validator to echo.
package validator

import (
	"strings"

	"pushrelay/internal/errors"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator
type CustomValidator struct {
	validator *validator.Validate
}

// New creates a validator that reports fields by their JSON names
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	return &CustomValidator{validator: v}
}

// Validate validates a request struct
func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

// Describe renders validation errors as "field: rule" pairs for the error details
func Describe(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		parts = append(parts, fieldErr.Namespace()+": "+fieldErr.Tag())
	}

	return strings.Join(parts, ", ")
}

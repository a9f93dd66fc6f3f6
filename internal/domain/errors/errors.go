package errors

import (
	"net/http"

	"pushrelay/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError carrying the same business code, so errors
// derived with WithDetails still satisfy errors.Is against the predefined value.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == other.errorCode
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Invalid push subscription",
		"",
	)

	ErrStaleEndpoint = NewBaseError(
		http.StatusBadRequest,
		"STALE_ENDPOINT",
		"Invalid subscription endpoint. Check VAPID keys or clear browser data.",
		"",
	)

	ErrInvalidPayload = NewBaseError(
		http.StatusBadRequest,
		"INVALID_PAYLOAD",
		"Invalid JSON",
		"",
	)

	ErrMissingText = NewBaseError(
		http.StatusBadRequest,
		"MISSING_TEXT",
		`Message must have a "text" field`,
		"",
	)

	ErrMissingID = NewBaseError(
		http.StatusBadRequest,
		"MISSING_ID",
		"Missing id",
		"",
	)

	// Credential-related errors
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Authorization header with Bearer token required",
		"",
	)

	ErrSubscriptionNotFound = NewBaseError(
		http.StatusNotFound,
		"SUBSCRIPTION_NOT_FOUND",
		"User not found",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error to errors.Is and errors.As
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Storage failure"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

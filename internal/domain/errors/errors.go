package errors

import (
	"fmt"
	"net/http"
)

// Error codes used across the application.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeVersionConflict = "VERSION_CONFLICT"
	CodeUnavailable     = "RESOURCE_UNAVAILABLE"
	CodeEncoding        = "ENCODING_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError is a custom error type for application errors
type AppError struct {
	Code       string
	Message    string
	StatusCode int // Same rule as HTTP status codes
	Err        error
	Details    map[string]interface{}
}

// Error returns a string representation of the error
func (e AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is implements the errors.Is interface
func (e AppError) Is(target error) bool {
	if target, ok := target.(AppError); ok {
		return target.Code == e.Code
	}
	return false
}

// Unwrap returns the underlying error
func (e AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e AppError) WithDetails(details map[string]interface{}) AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error
func (e AppError) WithDetail(key string, value interface{}) AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(message string) AppError {
	return AppError{
		Code:       CodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) AppError {
	return AppError{
		Code:       CodeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewVersionConflictError creates an error for a conditional write rejected
// because the remote ledger changed since it was last fetched. Callers
// recover by fetching a fresh snapshot and retrying.
func NewVersionConflictError(message string) AppError {
	return AppError{
		Code:       CodeVersionConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewUnavailableError creates an error for a remote resource that could not
// be reached or refused to serve the request.
func NewUnavailableError(message string, err error) AppError {
	return AppError{
		Code:       CodeUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewEncodingError creates an error for row content that cannot be safely
// serialized into the ledger document.
func NewEncodingError(message string) AppError {
	return AppError{
		Code:       CodeEncoding,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) AppError {
	return AppError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsVersionConflict reports whether err is a version-conflict error.
func IsVersionConflict(err error) bool {
	return hasCode(err, CodeVersionConflict)
}

// IsUnavailable reports whether err is a resource-unavailable error.
func IsUnavailable(err error) bool {
	return hasCode(err, CodeUnavailable)
}

// IsEncoding reports whether err is an encoding error.
func IsEncoding(err error) bool {
	return hasCode(err, CodeEncoding)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

func hasCode(err error, code string) bool {
	if appErr, ok := err.(AppError); ok {
		return appErr.Code == code
	}
	return false
}

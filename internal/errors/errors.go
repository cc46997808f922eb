package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeConnectivity = "CONNECTIVITY_FAILURE"
	ErrCodeWrite        = "WRITE_FAILURE"
	ErrCodeBestEffort   = "BEST_EFFORT_FAILURE"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "WRITE_FAILURE", "VALIDATION_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same action may succeed.
func (e *AppError) Retryable() bool {
	return e.Code == ErrCodeConnectivity || e.Code == ErrCodeWrite
}

// NewConnectivityError reports that the card store could not be reached. Until a
// fetch succeeds again the session refuses everything but a resync.
func NewConnectivityError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeConnectivity,
		Message: "card store unreachable, retry the sync",
		Status:  503,
		Err:     err,
	}
}

// NewWriteError reports a failed mutating call; no local state was changed.
func NewWriteError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeWrite,
		Message: fmt.Sprintf("%s failed", op),
		Status:  502,
		Err:     err,
	}
}

// NewBestEffortError describes a secondary write that failed without affecting the
// primary action. It is surfaced as a warning, never returned as the action's error.
func NewBestEffortError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeBestEffort,
		Message: fmt.Sprintf("%s failed", op),
		Status:  200,
		Err:     err,
	}
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// IsRetryable reports whether err is a connectivity or write failure.
func IsRetryable(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Retryable()
}

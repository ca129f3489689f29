// Package errors provides error code definitions for the sync engine and its
// local API surface.
package errors

import "fmt"

// ErrorCode represents a unique, stable error code surfaced in logs and API
// responses.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Configuration errors
	ErrConfig ErrorCode = "CONFIG_ERROR"

	// Local persistence errors (degraded mode, never fatal)
	ErrPersistence ErrorCode = "PERSISTENCE_ERROR"
	ErrDatabase    ErrorCode = "DATABASE_ERROR"

	// Sync errors
	ErrTransport      ErrorCode = "TRANSPORT_ERROR"
	ErrServerRejected ErrorCode = "SERVER_REJECTED"
	ErrSyncTimeout    ErrorCode = "SYNC_TIMEOUT"
	ErrSyncInFlight   ErrorCode = "SYNC_IN_FLIGHT"

	// Bootstrap errors
	ErrBootstrap ErrorCode = "BOOTSTRAP_FAILED"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error carries a specific code. Wrapped AppErrors are
// inspected through the Unwrap chain.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// CodeOf returns the error code of err, or ErrInternal when err carries none.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrInternal
}

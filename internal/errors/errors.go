// Package errors provides standardized domain errors with codes for the BookTravel station daemon.
//
// Usage:
//
//	// In stores and gateway - return typed errors
//	if strings.TrimSpace(text) == "" {
//	    return errors.Validation("comment text is empty")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotAuthenticated) {
//	    return nil, err // huma maps it to 401
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the daemon.
const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidation       Code = "VALIDATION"
	CodeTransport        Code = "TRANSPORT"
	CodeNotAuthenticated Code = "NOT_AUTHENTICATED"
	CodeConflict         Code = "CONFLICT"
	CodeLoadFailed       Code = "LOAD_FAILED"
	CodeSyncFailed       Code = "SYNC_FAILED"
	CodeInternal         Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotAuthenticated:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	case CodeTransport, CodeLoadFailed:
		return http.StatusBadGateway
	case CodeSyncFailed:
		// The optimistic state was kept; the caller gets the data plus this code.
		return http.StatusAccepted
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation error"}
	ErrTransport        = &Error{Code: CodeTransport, Message: "gateway unreachable"}
	ErrNotAuthenticated = &Error{Code: CodeNotAuthenticated, Message: "not authenticated"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrLoadFailed       = &Error{Code: CodeLoadFailed, Message: "load failed"}
	ErrSyncFailed       = &Error{Code: CodeSyncFailed, Message: "sync failed"}
	ErrInternal         = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Transport creates a transport failure error.
func Transport(msg string) *Error {
	return &Error{Code: CodeTransport, Message: msg}
}

// Transportf creates a transport failure error with formatted message.
func Transportf(format string, args ...any) *Error {
	return &Error{Code: CodeTransport, Message: fmt.Sprintf(format, args...)}
}

// NotAuthenticated creates a not authenticated error.
func NotAuthenticated(msg string) *Error {
	return &Error{Code: CodeNotAuthenticated, Message: msg}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// LoadFailed creates a load failed error. Read operations surface it while
// leaving prior state untouched, so callers may retry.
func LoadFailed(msg string) *Error {
	return &Error{Code: CodeLoadFailed, Message: msg}
}

// SyncFailed creates a sync failed error. Non-fatal: the optimistic local
// mutation is kept and the failure is only reported.
func SyncFailed(msg string) *Error {
	return &Error{Code: CodeSyncFailed, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

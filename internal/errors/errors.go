// Package errors provides shared error types that map to both CLI exit
// codes and HTTP status codes, keeping error handling consistent across
// the CLI and the JSON API.
package errors

import (
	"fmt"
	"net/http"
)

// Kind represents the category of an error, which determines both the
// CLI exit code and HTTP status code.
type Kind int

const (
	// KindGeneral represents an error that doesn't fit other categories.
	// CLI exit code: 1, HTTP status: 500 Internal Server Error
	KindGeneral Kind = iota

	// KindValidation represents structurally invalid input, e.g. a
	// caller-supplied status at creation time.
	// CLI exit code: 2, HTTP status: 400 Bad Request
	KindValidation

	// KindNotFound represents a missing resource.
	// CLI exit code: 3, HTTP status: 404 Not Found
	KindNotFound

	// KindUnauthorized represents a mutating operation attempted with no
	// acting user.
	// CLI exit code: 4, HTTP status: 401 Unauthorized
	KindUnauthorized

	// KindInternal represents an internal/database error.
	// CLI exit code: 5, HTTP status: 500 Internal Server Error
	KindInternal

	// KindCollision represents a uniqueness violation, e.g. a duplicate
	// attachment filename on a ticket.
	// CLI exit code: 6, HTTP status: 409 Conflict
	KindCollision
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation"
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindInternal:
		return "Internal"
	case KindCollision:
		return "Collision"
	case KindGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// Error represents a structured error with kind, message, and cause. It
// implements the standard error interface and maps to CLI exit codes and
// HTTP status codes.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the appropriate CLI exit code for this error.
func (e *Error) CLIExitCode() int {
	switch e.Kind {
	case KindValidation:
		return 2
	case KindNotFound:
		return 3
	case KindUnauthorized:
		return 4
	case KindInternal:
		return 5
	case KindCollision:
		return 6
	default:
		return 1
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest // 400
	case KindNotFound:
		return http.StatusNotFound // 404
	case KindUnauthorized:
		return http.StatusUnauthorized // 401
	case KindCollision:
		return http.StatusConflict // 409
	default:
		return http.StatusInternalServerError // 500
	}
}

// Constructor functions

// Unauthorized creates an error for mutations with no acting user.
func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates an error for missing resources.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Collision creates an error for uniqueness violations.
func Collision(format string, args ...interface{}) *Error {
	return &Error{Kind: KindCollision, Message: fmt.Sprintf(format, args...)}
}

// Validation creates an error for structurally invalid input.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal creates an error for internal/database failures.
func Internal(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// General creates a general error.
func General(format string, args ...interface{}) *Error {
	return &Error{Kind: KindGeneral, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a specific kind and message.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: err}
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// Helper functions for extracting error information

// GetKind extracts the Kind from an error, returning KindGeneral if the
// error is not an *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode extracts the CLI exit code from an error.
func GetCLIExitCode(err error) int {
	if e, ok := err.(*Error); ok {
		return e.CLIExitCode()
	}
	return 1
}

// GetHTTPStatus extracts the HTTP status code from an error.
func GetHTTPStatus(err error) int {
	if e, ok := err.(*Error); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Is returns true if the error is of the specified kind.
func Is(err error, kind Kind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}

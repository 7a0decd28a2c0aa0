package apierror

import (
	"fmt"

	"observability/internal/domain"
)

// Error is a typed request failure. Message is client-safe; the cause is kept
// for diagnostic logging and errors.Is/As only and is never serialized.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// Raise constructs a failure of the given kind. cause may be nil.
func Raise(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.kind)
	if e.message != "" {
		msg += ": " + e.message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the failure category.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the client-safe message, possibly empty.
func (e *Error) Message() string { return e.message }

// InvocationFailure is an unexpected internal error (500).
func InvocationFailure(message string, cause error) *Error {
	return Raise(KindInvocationFailure, message, cause)
}

// BadRequest reports malformed client input (400).
func BadRequest(message string) *Error {
	return Raise(KindBadRequest, message, nil)
}

// Unauthorized reports missing or rejected credentials (401).
func Unauthorized(message string, cause error) *Error {
	return Raise(KindUnauthorized, message, cause)
}

// Forbidden reports an authenticated caller lacking permission (403). It
// matches domain.ErrForbidden.
func Forbidden(message string) *Error {
	return Raise(KindForbidden, message, domain.ErrForbidden)
}

// NotFound reports a missing resource or route (404). It matches
// domain.ErrNotFound.
func NotFound(message string) *Error {
	return Raise(KindNotFound, message, domain.ErrNotFound)
}

// MethodNotAllowed reports a known route called with the wrong method (405).
// The caller sets the Allow header.
func MethodNotAllowed(message string) *Error {
	return Raise(KindMethodNotAllowed, message, nil)
}

// ConfigurationUnavailable reports that required service configuration could
// not be loaded (503).
func ConfigurationUnavailable(message string, cause error) *Error {
	return Raise(KindConfigurationUnavailable, message, cause)
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so wrapped variants compare equal to their
// predeclared value.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	// ErrNoToken signals an operation attempted without a stored bearer token.
	ErrNoToken = New("NO_TOKEN", http.StatusUnauthorized, "no auth token stored")
	// ErrUpstream covers transport failures and non-2xx replies from the portal.
	ErrUpstream = New("UPSTREAM_ERROR", http.StatusBadGateway, "portal request failed")
	// ErrUpstreamParse covers malformed or unexpectedly shaped portal payloads.
	ErrUpstreamParse = New("UPSTREAM_PARSE", http.StatusBadGateway, "portal response malformed")
	ErrLoginFailed   = New("LOGIN_FAILED", http.StatusUnauthorized, "portal rejected credentials")
	ErrValidation    = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal      = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrKeyNotFound   = New("KEY_NOT_FOUND", http.StatusNotFound, "key not found in store")
)

// Retryable reports whether a poll cycle failing with err should be retried.
// Upstream transport and parse failures are retryable; a missing token is
// terminal until the next scheduled trigger.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUpstream) || errors.Is(err, ErrUpstreamParse)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

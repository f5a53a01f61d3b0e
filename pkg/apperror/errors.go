package apperror

import (
	"errors"
	"net/http"
)

// Error is the typed fault carried from services up to the HTTP boundary.
// StatusCode drives the response code; Messages may carry multiple
// validation or identity-store failures.
type Error struct {
	StatusCode int
	Message    string
	Messages   []string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(status int, message string, details []string) *Error {
	return &Error{StatusCode: status, Message: message, Messages: details}
}

// Unauthorized signals missing or invalid credentials/token (401).
func Unauthorized(message string) *Error {
	return newError(http.StatusUnauthorized, message, nil)
}

// Forbidden signals an authenticated caller lacking permission (403).
func Forbidden(message string) *Error {
	return newError(http.StatusForbidden, message, nil)
}

// NotFound signals an absent entity (404).
func NotFound(message string) *Error {
	return newError(http.StatusNotFound, message, nil)
}

// Conflict signals an invariant violation, e.g. deleting a referenced or
// protected entity (409).
func Conflict(message string) *Error {
	return newError(http.StatusConflict, message, nil)
}

// Validation signals structural or business-rule input errors (422).
func Validation(message string, details ...string) *Error {
	return newError(http.StatusUnprocessableEntity, message, details)
}

// Internal signals an unexpected fault, optionally carrying detail messages
// from a failed storage or identity operation (500).
func Internal(message string, details ...string) *Error {
	return newError(http.StatusInternalServerError, message, details)
}

// As unwraps err into *Error if it is one anywhere in its chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, defaulting to 500 for untyped
// faults.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Package apperr defines the error kinds handlers translate into HTTP responses.
package apperr

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
)

// Kind classifies an error for the HTTP layer
type Kind int

const (
	KindInternal     Kind = iota // 500, message hidden
	KindValidation               // 400
	KindUnauthorized             // 401
	KindForbidden                // 403
	KindNotFound                 // 404
	KindConflict                 // 409
	KindUnavailable              // 503
	KindUpstream                 // 400, provider detail shown
	KindPartial                  // 500, message shown
)

// Error is an error with a kind and a message that is safe to show to clients
type Error struct {
	Kind    Kind   // HTTP class
	Message string // Client-facing text
	Err     error  // Cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation reports a malformed request
func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }

// Unauthorized reports a missing session or bad credentials
func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg, nil) }

// Forbidden reports a role that may not use the route
func Forbidden(msg string) *Error { return newError(KindForbidden, msg, nil) }

// NotFound reports an unknown user or order
func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }

// Conflict reports a write that clashes with stored data
func Conflict(msg string) *Error { return newError(KindConflict, msg, nil) }

// Unavailable reports a feature that is not configured
func Unavailable(msg string) *Error { return newError(KindUnavailable, msg, nil) }

// Upstream wraps a failed payment provider call; the provider detail is part of the message.
func Upstream(err error) *Error {
	return newError(KindUpstream, err.Error(), err)
}

// Internal wraps an unexpected failure; clients only see a generic message.
func Internal(msg string, err error) *Error {
	return newError(KindInternal, msg, err)
}

// Partial wraps a failure that happened after a remote side effect took place.
// Clients see msg so staff can finish the job by hand.
func Partial(msg string, err error) *Error {
	return newError(KindPartial, msg, err)
}

// KindOf reports the kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps err to an HTTP status code
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindUpstream:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError // Internal and Partial
	}
}

// PublicMessage is the text a client may see for err
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error."
}

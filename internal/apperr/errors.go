// Package apperr defines the error taxonomy shared by handlers and services.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindRateLimit     Kind = "rate_limit"
	KindConflict      Kind = "conflict"
	KindUpstream      Kind = "upstream"
	KindInternal      Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation reports malformed or missing input.
func Validation(message string) *Error { return newError(KindValidation, message, nil) }

// Forbidden reports a caller lacking the required event-scoped or global role.
func Forbidden(message string) *Error { return newError(KindAuthorization, message, nil) }

// NotFound reports a missing session, question or synthesized id.
func NotFound(message string) *Error { return newError(KindNotFound, message, nil) }

// RateLimited reports an exceeded submission ceiling.
func RateLimited(message string) *Error { return newError(KindRateLimit, message, nil) }

// Conflict reports a state transition that is not allowed.
func Conflict(message string) *Error { return newError(KindConflict, message, nil) }

// Upstream wraps a text-generation backend failure.
func Upstream(message string, err error) *Error { return newError(KindUpstream, message, err) }

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error { return newError(KindInternal, message, err) }

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Package apperr defines the error kinds surfaced by the API and their HTTP mapping.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and the HTTP layer.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation_error"
	KindConflict        Kind = "conflict"
	KindUnavailable     Kind = "unavailable"
	KindInternal        Kind = "internal_error"
)

// Error carries a kind, a client-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind, so errors.Is(err, apperr.Conflict("")) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// WithDetails attaches structured details and returns the same error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Validation(message string) *Error      { return New(KindValidation, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }

// Unavailable wraps a persistence or upstream failure.
func Unavailable(message string, err error) *Error {
	return Wrap(KindUnavailable, message, err)
}

// KindOf reports the kind of err. Deadlines are treated as unavailability;
// anything unclassified is internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUnavailable
	}
	return KindInternal
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	switch KindOf(err) {
	case KindUnavailable:
		return "Service temporarily unavailable"
	default:
		return "Unexpected server error"
	}
}

// DetailsOf returns any structured details attached to err.
func DetailsOf(err error) any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Package apperrors holds the error kinds every layer agrees on. Repositories and
// services wrap one of these sentinels with context; handlers match on them with
// errors.Is to pick a status code.
package apperrors

import (
	"github.com/pkg/errors"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrConflict               = errors.New("conflict")
	// The store gave up retrying an optimistic transaction.
	ErrTransientConflict = errors.New("transient conflict")
	ErrUpstream          = errors.New("upstream failure")
)

// NotFound wraps ErrNotFound with the kind of thing that was missing.
func NotFound(what string) error {
	return errors.Wrap(ErrNotFound, what)
}

// Invalid wraps ErrInvalidInput with a message fit to show the caller.
func Invalid(msg string) error {
	return errors.Wrap(ErrInvalidInput, msg)
}

// Upstream marks err as a failed call to an external collaborator.
func Upstream(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &upstreamError{cause: errors.Wrap(err, msg)}
}

type upstreamError struct {
	cause error
}

func (e *upstreamError) Error() string { return e.cause.Error() }

func (e *upstreamError) Unwrap() error { return e.cause }

func (e *upstreamError) Is(target error) bool { return target == ErrUpstream }

// Message returns the wrapped message without the sentinel suffix, so
// "title is required: invalid input" becomes "title is required".
func Message(err error) string {
	msg := err.Error()
	for _, s := range []error{ErrInvalidInput, ErrNotFound, ErrConflict, ErrForbidden, ErrAuthenticationRequired} {
		suffix := ": " + s.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)]
		}
	}
	return msg
}

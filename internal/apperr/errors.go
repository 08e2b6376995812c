// Package apperr classifies domain failures so transports can map them to status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Match them with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrInternal   = errors.New("internal")
)

// Error is a domain failure carrying a client-facing message.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is the kind sentinel of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a ValidationFailed error.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a NotFound error with msg as its message.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Forbidden returns an AuthorizationDenied error.
func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

// Internal wraps a persistence or infrastructure failure.
func Internal(msg string, err error) error {
	return &Error{Kind: ErrInternal, Message: msg, Err: err}
}

// KindOf returns the kind sentinel of err, or ErrInternal for unclassified errors.
func KindOf(err error) error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ErrInternal
}

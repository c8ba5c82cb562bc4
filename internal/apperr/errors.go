// Package apperr defines the error taxonomy shared by every layer of the service.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid is returned when input fails validation. It never names the failing field.
	ErrInvalid = errors.New("validation failed")
	// ErrNotFound means the referenced entity is absent or soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrIllegalTransition is a guard violation in the delivery lifecycle.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrUnauthorized is an authentication or access-policy denial.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict indicates a uniqueness conflict (e.g. duplicate email).
	ErrConflict = errors.New("conflict")
)

// Error carries a human-readable reason on top of one of the sentinels above.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return e.Reason
}

// Unwrap exposes the sentinel so errors.Is works against the kind.
func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundf builds an ErrNotFound with a formatted reason.
func NotFoundf(format string, args ...any) error { return newf(ErrNotFound, format, args...) }

// Illegalf builds an ErrIllegalTransition with a formatted reason.
func Illegalf(format string, args ...any) error { return newf(ErrIllegalTransition, format, args...) }

// Unauthorizedf builds an ErrUnauthorized with a formatted reason.
func Unauthorizedf(format string, args ...any) error { return newf(ErrUnauthorized, format, args...) }

// Conflictf builds an ErrConflict with a formatted reason.
func Conflictf(format string, args ...any) error { return newf(ErrConflict, format, args...) }

// Reason returns the reason attached to err, or fallback when err carries none.
func Reason(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Reason != "" {
		return e.Reason
	}
	return fallback
}

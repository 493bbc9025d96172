// Package common defines shared constants and error kinds used across the
// checkers service. Callers should match error kinds with errors.Is against
// the sentinel values below; the concrete *Error carries the user-facing
// message.
package common

import (
	"errors"
	"fmt"
)

var (
	// Request errors. The request has to be corrected before retrying.
	ErrInvalidInput = errors.New("invalid input")

	// Lookup errors.
	ErrNotFound      = errors.New("not found")
	ErrUnprocessable = errors.New("unprocessable entity")

	// Write errors.
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrAlreadyExists          = errors.New("already exists")

	// Authorization gate errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error is a classified error with a message meant for the API caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func UnsupportedOperator(op string) error {
	return newError(ErrInvalidInput, "Unsupported operator: %s", op)
}

func InvalidQuery(query, reason string) error {
	if reason == "" {
		return newError(ErrInvalidInput, "Invalid query: %s", query)
	}
	return newError(ErrInvalidInput, "Invalid query: %s (%s)", query, reason)
}

// TooManyTerms is reported when a query exceeds the index term ceiling.
func TooManyTerms(checkerUUID, query string) error {
	return newError(ErrInvalidInput,
		"change query of checker %s is invalid: %s (too many terms in query)", checkerUUID, query)
}

func InvalidURL(url string) error {
	return newError(ErrInvalidInput, "only http/https URLs supported: %s", url)
}

// InvalidText is reported for text fields holding a NUL character, which
// the store cannot keep.
func InvalidText(field string) error {
	return newError(ErrInvalidInput, "%s must not contain NUL characters", field)
}

func InvalidUUID(s string) error {
	return newError(ErrInvalidInput, "invalid checker UUID: %s", s)
}

func InvalidStatus(s string) error {
	return newError(ErrInvalidInput, "invalid checker status: %s", s)
}

func InvalidBlockingCondition(s string) error {
	return newError(ErrInvalidInput, "invalid blocking condition: %s", s)
}

var (
	NameRequired       error = newError(ErrInvalidInput, "name cannot be unset")
	RepositoryRequired error = newError(ErrInvalidInput, "repository cannot be unset")
	StatusRequired     error = newError(ErrInvalidInput, "status cannot be unset")
	UUIDImmutable      error = newError(ErrInvalidInput, "uuid cannot be updated")
)

func CheckerNotFound(uuid string) error {
	return newError(ErrNotFound, "checker %s not found", uuid)
}

func RepositoryNotFound(name string) error {
	return newError(ErrUnprocessable, "repository %s not found", name)
}

func ConcurrentModification(uuid string) error {
	return newError(ErrConcurrentModification, "checker %s was modified concurrently", uuid)
}

func CheckerAlreadyExists(uuid string) error {
	return newError(ErrAlreadyExists, "checker %s already exists", uuid)
}

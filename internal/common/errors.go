// Package common defines the error taxonomy shared by every layer of
// mentordesk. Callers should use errors.Is against the kind sentinels.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means credentials or settings required by an operation are absent.
	ErrNotConfigured = errors.New("not configured")
	// ErrTransport covers non-2xx responses, network failures and malformed payloads.
	ErrTransport = errors.New("transport error")
	// ErrValidation covers business rule violations such as duplicate emails.
	ErrValidation = errors.New("validation error")
	// ErrBadRequest covers malformed requests (missing profile/role, unknown action).
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound is returned when an update or delete target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrIO covers backing-store read and write failures.
	ErrIO = errors.New("io error")

	// ErrKeyNotFound is returned by key-value stores for a missing key.
	ErrKeyNotFound = errors.New("key not found")
)

// Error carries a user-facing message and the kind it belongs to.
// Error() returns only the message so it can be shown verbatim.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around a cause. The cause text is
// appended to the message.
func Wrap(kind error, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg + ": " + err.Error(), Err: err}
}

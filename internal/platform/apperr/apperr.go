package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind int

const (
	// KindNotFound means the referenced entity does not exist.
	KindNotFound Kind = iota + 1
	// KindInvalidArgument means the request itself is malformed or incomplete.
	KindInvalidArgument
	// KindInvalidState means the entity exists but the operation is not
	// permitted in its current lifecycle state.
	KindInvalidState
	// KindUnavailable means a remote collaborator could not be reached.
	KindUnavailable
	// KindConflict means a concurrent write won; the caller should reload and retry.
	KindConflict
)

// Error is the error type returned by every service in this repository.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying error reachable through errors.Is/As.
func Wrap(kind Kind, err error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }
func IsInvalidState(err error) bool    { return KindOf(err) == KindInvalidState }
func IsUnavailable(err error) bool     { return KindOf(err) == KindUnavailable }
func IsConflict(err error) bool        { return KindOf(err) == KindConflict }

// Package domainerrors provides coded errors for domain and service layers.
//
// Stores and infrastructure return sentinel errors (pkg/platform/sentinel);
// services translate them into coded errors so transports can map outcomes
// without string matching. The code set is closed: callers switch on these
// constants, never on message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error. The set is closed by design.
type Code string

const (
	// CodeValidation marks malformed or out-of-range input.
	CodeValidation Code = "validation_error"
	// CodeInvariantViolation marks a model-level invariant breach. Services
	// translate it to CodeValidation before it reaches a transport.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeNotFound marks an entity that is absent or not owned by the
	// expected parent or tenant.
	CodeNotFound Code = "not_found"
	// CodeForbidden marks a missing capability or a hard business prohibition.
	CodeForbidden Code = "forbidden"
	// CodeInvalidTransition marks a state change whose precondition failed,
	// including verification entities already in their target state.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeConflict marks a uniqueness or concurrent-update conflict.
	CodeConflict Code = "conflict"
	// CodeInternal marks unexpected infrastructure failure.
	CodeInternal Code = "internal_error"
	// CodeTimeout marks a context deadline or lock acquisition timeout.
	CodeTimeout Code = "timeout"
	// CodeUnauthorized marks a missing or invalid actor identity.
	CodeUnauthorized Code = "unauthorized"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Code returns the classification of this error.
func (e *Error) Code() Code { return e.code }

// New builds a coded error with no cause.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause remains
// reachable via errors.Is / errors.As.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code
	}
	return CodeInternal
}

// Message returns the outermost coded message without the wrapped cause, so
// transports can expose it safely. Falls back to err.Error() for uncoded errors.
func Message(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.msg
	}
	return err.Error()
}

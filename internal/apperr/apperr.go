// Package apperr defines the failure taxonomy shared by all assistant
// operations. Every domain operation classifies its own failures with one of
// these kinds and converts them into a user-facing response string at the
// point of occurrence; none of them escape to a front-end as a fault.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure.
type Kind string

const (
	// KindFormat marks a malformed date or number argument.
	KindFormat Kind = "format"
	// KindIndex marks an out-of-range list index.
	KindIndex Kind = "index"
	// KindUnconfigured marks a missing credential or required setting.
	KindUnconfigured Kind = "unconfigured"
	// KindUnavailable marks a missing optional dependency or no network.
	KindUnavailable Kind = "unavailable"
	// KindUpstream marks a non-success response from an external service.
	KindUpstream Kind = "upstream"
	// KindDelivery marks a notification sink that failed to send.
	KindDelivery Kind = "delivery"
	// KindDisabled marks a feature turned off in configuration.
	KindDisabled Kind = "disabled"
	// KindUnreachable marks a backend that did not answer a probe.
	KindUnreachable Kind = "unreachable"
	// KindInvalidLevel marks a volume level outside 0..100.
	KindInvalidLevel Kind = "invalid_level"
)

// Error is a classified operation failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a user-facing message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind of err, or the empty kind for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the user-facing message for err. Unclassified errors get a
// generic message so internal detail never leaks to a front-end.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "An error occurred"
}

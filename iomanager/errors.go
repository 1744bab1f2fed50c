package iomanager

import (
	"fmt"

	"github.com/gcrone/iomanager/utils/errors"
)

// Kind enumerates the distinct, inspectable error categories the façade
// can raise. Callers should use errors.As against *Error and switch on
// Kind rather than string-matching.
type Kind int

const (
	// Configuration: duplicate uid, malformed uri, or a provider refused
	// its subset of the connection list.
	Configuration Kind = iota
	// UnknownConnection: uid not in the catalog, or its transport handle
	// was invalidated (e.g. by Reset).
	UnknownConnection
	// DirectionMismatch: a ConnectionRef's direction contradicts the
	// connection's declared service type.
	DirectionMismatch
	// Timeout: a send/receive window elapsed without progress.
	Timeout
	// CallbackConflict: Receive was called while a callback binding is
	// active on the same receiver.
	CallbackConflict
	// NotSerializable: a network send of a type that fails the
	// serialization gate, or a received network frame that fails to
	// decode.
	NotSerializable
	// TransportFailure: a wrapped error surfaced by a transport provider.
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "Configuration"
	case UnknownConnection:
		return "UnknownConnection"
	case DirectionMismatch:
		return "DirectionMismatch"
	case Timeout:
		return "Timeout"
	case CallbackConflict:
		return "CallbackConflict"
	case NotSerializable:
		return "NotSerializable"
	case TransportFailure:
		return "TransportFailure"
	default:
		return "Unknown"
	}
}

// Error is the single error type the façade raises; Kind distinguishes
// the seven categories spec.md §7 names.
type Error struct {
	kind  Kind
	uid   string
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("iomanager: %s[%s]: %v", e.kind, e.uid, e.cause)
	}
	return fmt.Sprintf("iomanager: %s[%s]: %s", e.kind, e.uid, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's category.
func (e *Error) Kind() Kind { return e.kind }

func newError(kind Kind, uid, msg string) *Error {
	return &Error{kind: kind, uid: uid, msg: msg}
}

// wrapError joins msg and cause with utils/errors.WrapWith so the cause
// chain carries both; e.Unwrap() hands that joined error to errors.Is/As.
func wrapError(kind Kind, uid, msg string, cause error) *Error {
	return &Error{kind: kind, uid: uid, msg: msg, cause: errors.WrapWith(cause, "%s", msg)}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == kind
	}
	return false
}

// Package taperror defines the error kinds of the tau-p travel-time engine
// and a wrapper type carrying one of them plus an underlying cause.
package taperror

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the engine-level error categories a caller can switch on.
type Kind int

const (
	// DepthOutOfRange: source depth outside [0, z_max].
	DepthOutOfRange Kind = iota
	// TauIntegralFailure: a tau-p integration or spline setup yielded a
	// non-finite value.
	TauIntegralFailure
	// PhaseListInvalid: the phase-filter strings do not match any known
	// phase group.
	PhaseListInvalid
	// ModelReadFailure: cache or source file missing, unreadable, or
	// schema-mismatched.
	ModelReadFailure
	// SerializationMismatch: on-disk snapshot incompatible with the
	// current code version; treated as a cache miss, not fatal.
	SerializationMismatch
	// InterpolationDegenerate: penta-diagonal matrix singular for a
	// branch; the branch is disabled and a warning logged.
	InterpolationDegenerate
)

func (k Kind) String() string {
	switch k {
	case DepthOutOfRange:
		return "DepthOutOfRange"
	case TauIntegralFailure:
		return "TauIntegralFailure"
	case PhaseListInvalid:
		return "PhaseListInvalid"
	case ModelReadFailure:
		return "ModelReadFailure"
	case SerializationMismatch:
		return "SerializationMismatch"
	case InterpolationDegenerate:
		return "InterpolationDegenerate"
	default:
		return "UnknownError"
	}
}

// Error is the engine's error type: a Kind plus context and an optional
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error wrapping cause with github.com/pkg/errors so a
// stack trace is retained for the ModelReadFailure / cache-rebuild paths
// that cross file-I/O boundaries.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.WithMessage(cause, message)}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

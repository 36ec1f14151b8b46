// Package herrors classifies errors raised by the memory-and-synthesis
// back plane into the three kinds the components agree on: Transient,
// Malformed, and Fatal. The kind determines how a caller is expected to
// react (retry later, reject immediately, or exit the process).
package herrors

import (
	"errors"
	"fmt"
)

// Kind is the propagation policy attached to an error.
type Kind int

const (
	// Transient errors come from pool exhaustion, network timeouts, or
	// broadcast overruns. Callers may retry; scheduled jobs do not retry
	// within a tick, they just wait for the next one.
	Transient Kind = iota
	// Malformed covers unparseable messages, invalid identifiers, or
	// missing required fields. The call is rejected immediately and
	// never mutates state.
	Malformed
	// Fatal covers missing credentials, schema mismatches, and anything
	// else that means the owning process cannot continue.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Malformed:
		return "malformed"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind and operation label. Returns nil if
// err is nil, so it is safe to use as a one-line wrapper at call sites.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Transientf builds a Transient error from a format string, mirroring
// fmt.Errorf.
func Transientf(format string, args ...any) error {
	return &Error{Kind: Transient, Err: fmt.Errorf(format, args...)}
}

// Malformedf builds a Malformed error from a format string.
func Malformedf(format string, args ...any) error {
	return &Error{Kind: Malformed, Err: fmt.Errorf(format, args...)}
}

// Fatalf builds a Fatal error from a format string.
func Fatalf(format string, args ...any) error {
	return &Error{Kind: Fatal, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind of err, defaulting to Transient when err
// carries no classification (the safest default: callers who don't know
// better should be willing to retry rather than treat an error as
// process-ending).
func KindOf(err error) Kind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return Transient
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Package derr defines the error kinds shared across the vortex packages
// and a small set of invariant helpers in the style of dolt's go/store/d
// package.
package derr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure the way callers need to branch on it, not by
// Go type.
type Kind int

const (
	// InvalidDType: operation applied to a wrong logical type.
	InvalidDType Kind = iota
	// InvalidEncoding: unknown/unregistered encoding id, or coercion to a
	// wrong encoding.
	InvalidEncoding
	// OutOfBounds: index, slice, or take beyond length.
	OutOfBounds
	// InvalidSerde: missing flatbuffer field, malformed magic, corrupted
	// buffer size.
	InvalidSerde
	// NotImplemented: unsupported by this encoding and canonicalization
	// failed or is disabled.
	NotImplemented
	// Io: underlying byte-range read/write failure.
	Io
	// CodecError: encoding-specific failure.
	CodecError
)

func (k Kind) String() string {
	switch k {
	case InvalidDType:
		return "InvalidDType"
	case InvalidEncoding:
		return "InvalidEncoding"
	case OutOfBounds:
		return "OutOfBounds"
	case InvalidSerde:
		return "InvalidSerde"
	case NotImplemented:
		return "NotImplemented"
	case Io:
		return "Io"
	case CodecError:
		return "CodecError"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every vortex package.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vortex: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("vortex: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error, wrapping msg with the given kind and operation.
func New(kind Kind, op string, msg string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(msg, args...)}
}

// Wrap attaches kind/op to an existing error without discarding its chain.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.WithStack(err)}
}

// KindOf reports the Kind of err if it (or something it wraps) is an
// *Error; ok is false otherwise.
func KindOf(err error) (k Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err's Kind equals k.
func Is(err error, k Kind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}

// PanicIfTrue panics if cond is true. Used for invariants that indicate a
// programming bug rather than a recoverable error.
func PanicIfTrue(cond bool, args ...interface{}) {
	if cond {
		panic(fmt.Sprint(args...))
	}
}

// PanicIfFalse panics if cond is false.
func PanicIfFalse(cond bool, args ...interface{}) {
	PanicIfTrue(!cond, args...)
}

// PanicIfError panics if err is non-nil.
func PanicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

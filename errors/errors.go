// Package errors defines the error handling used throughout the
// distributed filesystem: every error raised by the naming core, the
// RMI fabric, or the storage surface carries a Kind so that callers
// (and, in particular, the RMI stub re-raising a captured remote
// failure) can act on the class of failure without parsing messages.
package errors

import (
	"bytes"
	"fmt"
)

// Error is the type that implements the error interface.
// A zero Error leaves every field unset.
type Error struct {
	// Op is the operation being performed, usually the name of the
	// method that failed (Register, CreateFile, Start, ...).
	Op string
	// Kind classifies the error. Other if unknown or irrelevant.
	Kind Kind
	// Err is the underlying error that triggered this one, if any.
	Err error
}

var _ error = (*Error)(nil)

// Kind classifies an Error so that callers can branch on the failure
// class rather than its text.
type Kind uint8

// Kinds of errors, per the error taxonomy in SPEC_FULL.md §7.
const (
	Other           Kind = iota // Unclassified error; not printed.
	InvalidArgument             // A local precondition was violated.
	NotFound                    // A named path or target is absent.
	IllegalState                // A lifecycle rule was violated.
	RMIException                // The wire layer failed (connect, serialize, read).
	UnknownHost                 // No local address discoverable for a wildcard skeleton.
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "error"
	case InvalidArgument:
		return "invalid argument"
	case NotFound:
		return "not found"
	case IllegalState:
		return "illegal state"
	case RMIException:
		return "RMI exception"
	case UnknownHost:
		return "unknown host"
	}
	return "unknown error kind"
}

// E builds an error value from its arguments. The type of each
// argument determines its meaning:
//
//	string
//		The operation being performed (Op).
//	Kind
//		The class of error.
//	error
//		The underlying error that triggered this one.
//
// If Kind is unset or Other and the wrapped error is itself an *Error,
// the wrapped Kind is promoted, the same way upspin.io/errors.E does it.
func E(args ...interface{}) error {
	if len(args) == 0 {
		return nil
	}
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case string:
			e.Op = a
		case Kind:
			e.Kind = a
		case *Error:
			cp := *a
			e.Err = &cp
		case error:
			e.Err = a
		default:
			return Errorf("errors.E: bad call with argument of type %T: %v", arg, arg)
		}
	}
	if e.Kind == Other {
		if prev, ok := e.Err.(*Error); ok {
			e.Kind = prev.Kind
		}
	}
	return e
}

func (e *Error) Error() string {
	b := new(bytes.Buffer)
	if e.Op != "" {
		b.WriteString(e.Op)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
	if b.Len() == 0 {
		return "no error"
	}
	return b.String()
}

// Unwrap allows errors.Is / errors.As to see through an *Error to its
// wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func pad(b *bytes.Buffer, sep string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(sep)
}

// KindOf returns the Kind of err, Other if err is nil or not an *Error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Other
}

// Is reports whether err is an *Error of the given Kind.
func Is(kind Kind, err error) bool {
	return KindOf(err) == kind
}

// Str returns an error that formats as the given text, for use as the
// error-typed argument to E, mirroring the standard library's errors.New
// but kept local so callers need only import this package.
func Str(text string) error {
	return &errorString{text}
}

type errorString struct{ s string }

func (e *errorString) Error() string { return e.s }

// Errorf is equivalent to fmt.Errorf but returns a value usable as the
// error-typed argument to E.
func Errorf(format string, args ...interface{}) error {
	return &errorString{fmt.Sprintf(format, args...)}
}

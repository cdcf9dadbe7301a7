package sherr

import (
	"fmt"
)

// BuiltinKind classifies how an in-process command failed.
type BuiltinKind int

const (
	// Args means the builtin was given malformed arguments.
	Args BuiltinKind = iota
	// IO is a generic I/O failure.
	IO
	// Sys is an OS call failure not covered by IO.
	Sys
	// Lock means a shared resource the builtin needed couldn't be acquired.
	Lock
	// Other is an opaque, already formatted failure from elsewhere in the
	// application.
	Other
)

func (k BuiltinKind) String() string {
	switch k {
	case Args:
		return "Args"
	case IO:
		return "IO"
	case Sys:
		return "Sys"
	case Lock:
		return "Lock"
	case Other:
		return "Other"
	default:
		return fmt.Sprintf("BuiltinKind(%d)", int(k))
	}
}

// BuiltinError is the failure of a builtin, displayed as its cause.
type BuiltinError struct {
	Kind BuiltinKind
	Err  error
}

func (e *BuiltinError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *BuiltinError) Unwrap() error {
	return e.Err
}

// NewBuiltinError wraps err with the given kind.
func NewBuiltinError(kind BuiltinKind, err error) *BuiltinError {
	return &BuiltinError{Kind: kind, Err: err}
}

// Foreign is the minimal shape an application error needs to be folded into
// the chain: a message and, optionally, an underlying cause.
type Foreign interface {
	error
	Cause() error
}

// foreign adapts a Foreign so its cause is reachable through Unwrap without
// this package knowing its concrete type.
type foreign struct {
	f Foreign
}

func (f *foreign) Error() string { return f.f.Error() }

func (f *foreign) Unwrap() error { return f.f.Cause() }

// Compat folds an opaque application error into the builtin chain as an Other
// error. Errors implementing Foreign keep their cause reachable.
func Compat(err error) *BuiltinError {
	if f, ok := err.(Foreign); ok {
		return NewBuiltinError(Other, &foreign{f: f})
	}
	return NewBuiltinError(Other, err)
}

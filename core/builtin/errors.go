package builtin

import (
	"fmt"
)

// ArgsError is returned by builtins given malformed arguments.
type ArgsError struct {
	Err error
}

// Usage marks err as an argument error.
func Usage(err error) error {
	return &ArgsError{Err: err}
}

// Usagef formats an argument error.
func Usagef(format string, a ...interface{}) error {
	return &ArgsError{Err: fmt.Errorf(format, a...)}
}

func (e *ArgsError) Error() string { return e.Err.Error() }

func (e *ArgsError) Unwrap() error { return e.Err }

// LockError is returned when a builtin can't acquire a shared resource.
type LockError struct {
	Resource string
	Err      error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("could not lock %s: %v", e.Resource, e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }

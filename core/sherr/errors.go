// Package sherr holds the error taxonomy for pipeline execution.
//
// Errors form a causal chain: a ShellError names the command that failed and
// wraps a CommandError, which may wrap a BuiltinError, which wraps the
// underlying OS or library error. Every level implements Unwrap so the chain
// can be inspected with errors.Is and errors.As.
package sherr

import (
	"fmt"
)

// ShellError is the top-level, reportable error. It always carries the display
// name of the command that produced it.
type ShellError struct {
	Name string
	Err  *CommandError
}

// Attribute annotates err with the display name of the command that produced
// it. It is the only place a ShellError is built, so every failure is
// attributed to exactly one command.
func Attribute(name string, err *CommandError) *ShellError {
	return &ShellError{Name: name, Err: err}
}

func (e *ShellError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ShellError) Unwrap() error {
	return e.Err
}

// CommandKind identifies why a command could not run.
type CommandKind int

const (
	// StartRealCommand means an external program could not be spawned.
	StartRealCommand CommandKind = iota
	// RealCommandStatus means the exit status of a process couldn't be read.
	RealCommandStatus
	// DupFd means an fd could not be duplicated onto its destination.
	DupFd
	// InvalidFd means an fd number was outside the representable range.
	InvalidFd
	// Pipe means a pipe couldn't be created.
	Pipe
	// PipeIo means a pipe end couldn't be closed or used.
	PipeIo
	// FdAsFile means a file couldn't be opened and installed as an fd.
	FdAsFile
	// Builtin means an in-process command failed.
	Builtin
)

func (k CommandKind) String() string {
	switch k {
	case StartRealCommand:
		return "StartRealCommand"
	case RealCommandStatus:
		return "RealCommandStatus"
	case DupFd:
		return "DupFd"
	case InvalidFd:
		return "InvalidFd"
	case Pipe:
		return "Pipe"
	case PipeIo:
		return "PipeIo"
	case FdAsFile:
		return "FdAsFile"
	case Builtin:
		return "Builtin"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// CommandError is a failure while setting up, running or waiting for a single
// command. Fd and Filename are only meaningful for the kinds that use them.
type CommandError struct {
	Kind     CommandKind
	Fd       int
	Filename string
	Err      error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case RealCommandStatus:
		return fmt.Sprintf("could not get exit status: %v", e.Err)
	case DupFd:
		return fmt.Sprintf("could not duplicate fd %d: %v", e.Fd, e.Err)
	case InvalidFd:
		return fmt.Sprintf("bad fd number (%d)", e.Fd)
	case FdAsFile:
		return fmt.Sprintf("could not set up fd %d as file %s: %v", e.Fd, e.Filename, e.Err)
	default:
		if e.Err == nil {
			return e.Kind.String()
		}
		return e.Err.Error()
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a CommandError of the same kind, so callers can
// match with errors.Is(err, &CommandError{Kind: InvalidFd}).
func (e *CommandError) Is(target error) bool {
	t, ok := target.(*CommandError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil
}

// NewStartRealCommand wraps a spawn failure.
func NewStartRealCommand(err error) *CommandError {
	return &CommandError{Kind: StartRealCommand, Err: err}
}

// NewRealCommandStatus wraps a wait failure.
func NewRealCommandStatus(err error) *CommandError {
	return &CommandError{Kind: RealCommandStatus, Err: err}
}

// NewDupFd wraps a failure to duplicate onto fd.
func NewDupFd(err error, fd int) *CommandError {
	return &CommandError{Kind: DupFd, Fd: fd, Err: err}
}

// NewInvalidFd reports an fd number outside [0, 255].
func NewInvalidFd(fd int) *CommandError {
	return &CommandError{Kind: InvalidFd, Fd: fd}
}

// NewPipe wraps a pipe creation failure.
func NewPipe(err error) *CommandError {
	return &CommandError{Kind: Pipe, Err: err}
}

// NewPipeIo wraps a failure to close or use a pipe end.
func NewPipeIo(err error) *CommandError {
	return &CommandError{Kind: PipeIo, Err: err}
}

// NewFdAsFile wraps a failure to install filename at fd.
func NewFdAsFile(err error, fd int, filename string) *CommandError {
	return &CommandError{Kind: FdAsFile, Fd: fd, Filename: filename, Err: err}
}

// NewBuiltin wraps a builtin failure.
func NewBuiltin(err *BuiltinError) *CommandError {
	return &CommandError{Kind: Builtin, Err: err}
}

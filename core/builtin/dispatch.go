package builtin

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/josephlewis42/fdsh/core/proc"
	"github.com/josephlewis42/fdsh/core/sherr"
	"github.com/rs/zerolog"
)

// ErrUnknownBuiltin is the cause reported when no builtin has the requested
// name.
var ErrUnknownBuiltin = errors.New("unknown builtin")

// Dispatcher runs builtins looked up from a Registry.
type Dispatcher struct {
	Registry *Registry
	Logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{Registry: reg, Logger: logger}
}

// Dispatch runs the builtin named by inv.Args[0]. Any failure is returned as a
// Builtin CommandError wrapping the classified BuiltinError, with a matching
// Failed status.
func (d *Dispatcher) Dispatch(inv *Invocation) (proc.ExitStatus, error) {
	b, ok := d.Registry.Lookup(inv.Name())
	if !ok {
		cmdErr := sherr.NewBuiltin(sherr.NewBuiltinError(sherr.Other, ErrUnknownBuiltin))
		return proc.Failed(cmdErr), cmdErr
	}

	status, err := b.Run(inv)
	if err != nil {
		cmdErr := sherr.NewBuiltin(Classify(err))
		d.Logger.Debug().Str("builtin", inv.Name()).Err(err).Msg("builtin failed")
		return proc.Failed(cmdErr), cmdErr
	}

	d.Logger.Debug().Str("builtin", inv.Name()).Stringer("status", status).Msg("builtin finished")
	return status, nil
}

// Classify maps an error returned by a builtin to its BuiltinError. Errors that
// are already BuiltinErrors are returned unchanged; unrecognized errors are
// folded in as Other.
func Classify(err error) *sherr.BuiltinError {
	if be, ok := err.(*sherr.BuiltinError); ok {
		return be
	}

	var (
		argsErr *ArgsError
		lockErr *LockError
		pathErr *fs.PathError
		linkErr *os.LinkError
		sysErr  *os.SyscallError
		errno   syscall.Errno
	)

	switch {
	case errors.As(err, &argsErr):
		return sherr.NewBuiltinError(sherr.Args, err)
	case errors.As(err, &lockErr):
		return sherr.NewBuiltinError(sherr.Lock, err)
	case errors.As(err, &pathErr), errors.As(err, &linkErr), isIOSentinel(err):
		return sherr.NewBuiltinError(sherr.IO, err)
	case errors.As(err, &sysErr), errors.As(err, &errno):
		return sherr.NewBuiltinError(sherr.Sys, err)
	default:
		return sherr.Compat(err)
	}
}

func isIOSentinel(err error) bool {
	for _, target := range []error{
		io.ErrUnexpectedEOF,
		io.ErrShortWrite,
		io.ErrShortBuffer,
		io.ErrClosedPipe,
		io.ErrNoProgress,
		os.ErrClosed,
		os.ErrDeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

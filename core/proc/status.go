// Package proc starts external programs with a prepared fd table and collects
// how they terminated.
package proc

import (
	"fmt"
	"syscall"
)

type statusKind int

const (
	exited statusKind = iota
	signaled
	failed
)

// ExitStatus describes how one pipeline stage finished: it exited with a code,
// was killed by a signal, or failed with an error before a status existed.
type ExitStatus struct {
	kind   statusKind
	code   int
	signal syscall.Signal
	err    error
}

// Exited is the status of a stage that ran to completion with code.
func Exited(code int) ExitStatus {
	return ExitStatus{kind: exited, code: code}
}

// Signaled is the status of a stage terminated by sig.
func Signaled(sig syscall.Signal) ExitStatus {
	return ExitStatus{kind: signaled, signal: sig}
}

// Failed is the status of a stage that produced an error instead of a status.
func Failed(err error) ExitStatus {
	return ExitStatus{kind: failed, err: err}
}

// Success reports whether the stage exited with code 0.
func (s ExitStatus) Success() bool {
	return s.kind == exited && s.code == 0
}

// Exited reports whether the stage ran to completion, and with which code.
func (s ExitStatus) Exited() (int, bool) {
	return s.code, s.kind == exited
}

// Signaled reports whether the stage was killed, and by which signal.
func (s ExitStatus) Signaled() (syscall.Signal, bool) {
	return s.signal, s.kind == signaled
}

// Err returns the failure of a Failed status, nil otherwise.
func (s ExitStatus) Err() error {
	if s.kind != failed {
		return nil
	}
	return s.err
}

// Code maps the status to a shell exit code: the code itself, 128+signal for
// signals, and 1 for failures.
func (s ExitStatus) Code() int {
	switch s.kind {
	case exited:
		return s.code
	case signaled:
		return 128 + int(s.signal)
	default:
		return 1
	}
}

func (s ExitStatus) String() string {
	switch s.kind {
	case exited:
		return fmt.Sprintf("exit status %d", s.code)
	case signaled:
		return fmt.Sprintf("signal: %v", s.signal)
	default:
		return fmt.Sprintf("failed: %v", s.err)
	}
}

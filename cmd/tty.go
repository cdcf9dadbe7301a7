package cmd

import (
	"io"

	"github.com/mattn/go-isatty"
)

type fileDescriptor interface {
	Fd() uintptr
}

// isTerminal reports whether w is attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(fileDescriptor)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

package builtin

import (
	"fmt"
	"io"

	"github.com/josephlewis42/fdsh/core/proc"
	getopt "github.com/pborman/getopt/v2"
)

// SimpleCommand parses a builtin's flags before running it.
type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail ignores malformed arguments and always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run parses the invocation's arguments and, if that succeeds, calls the
// callback. Malformed arguments are returned as an ArgsError.
func (s *SimpleCommand) Run(inv *Invocation, callback func() (proc.ExitStatus, error)) (proc.ExitStatus, error) {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	if err := opts.Getopt(inv.Args, nil); err != nil && !s.NeverBail {
		return proc.Exited(2), Usage(err)
	}

	if *s.ShowHelp {
		s.PrintHelp(inv.Stdout())
		return proc.Exited(0), nil
	}

	return callback()
}

// RunE is like Run but for callbacks that only fail or succeed.
func (s *SimpleCommand) RunE(inv *Invocation, callback func() error) (proc.ExitStatus, error) {
	return s.Run(inv, func() (proc.ExitStatus, error) {
		if err := callback(); err != nil {
			return proc.Exited(1), err
		}
		return proc.Exited(0), nil
	})
}

package sherr

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	colorName  = []color.Attribute{color.FgRed, color.Bold}
	colorCause = []color.Attribute{color.Faint}
)

// Chain returns err followed by each of its causes, outermost first.
func Chain(err error) []error {
	var out []error
	for err != nil {
		out = append(out, err)
		err = errors.Unwrap(err)
	}
	return out
}

// Root returns the innermost cause of err.
func Root(err error) error {
	chain := Chain(err)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// Renderer writes errors for display to a user.
type Renderer struct {
	// Color highlights the command name.
	Color bool
	// Verbose lists each cause of the chain on its own line after the
	// message.
	Verbose bool
}

// Render writes err as "name: causes" followed by a newline. Errors that aren't
// ShellErrors are written as-is.
func (r Renderer) Render(w io.Writer, err error) error {
	if err == nil {
		return nil
	}

	name, msg := "", err.Error()
	var shellErr *ShellError
	if errors.As(err, &shellErr) {
		name = shellErr.Name
		msg = shellErr.Err.Error()
	}

	if name != "" {
		if _, werr := fmt.Fprint(w, r.paint(colorName, name), ": "); werr != nil {
			return werr
		}
	}
	if _, werr := fmt.Fprintln(w, msg); werr != nil {
		return werr
	}

	if !r.Verbose {
		return nil
	}
	for _, cause := range Chain(err)[1:] {
		if _, werr := fmt.Fprintln(w, r.paint(colorCause, fmt.Sprintf("  caused by: %s", describe(cause)))); werr != nil {
			return werr
		}
	}
	return nil
}

func (r Renderer) paint(attrs []color.Attribute, s string) string {
	if !r.Color {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func describe(err error) string {
	switch e := err.(type) {
	case *CommandError:
		return fmt.Sprintf("[%s] %v", e.Kind, e)
	case *BuiltinError:
		return fmt.Sprintf("[%s] %v", e.Kind, e)
	default:
		return err.Error()
	}
}

// Package pipeline runs parsed pipelines: it creates the pipes between stages,
// plans each stage's descriptors, launches or dispatches the stage and
// collects the exit statuses.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/fdsh/core/fdplan"
)

// Kind says how a command is run.
type Kind int

const (
	// KindExternal commands are spawned as OS processes.
	KindExternal Kind = iota
	// KindBuiltin commands run in-process through the builtin registry.
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindExternal:
		return "external"
	case KindBuiltin:
		return "builtin"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Command is a single stage of a pipeline.
type Command struct {
	Kind Kind
	// Program is the program path or name for external commands and the
	// registered name for builtins.
	Program string
	Args    []string
	// Env holds "key=value" overrides applied on top of the executor's
	// environment. Only external commands use it.
	Env []string
	// Redirects are applied in order after the stage's pipe input is
	// installed and before its pipe output is.
	Redirects []Redirect
}

// External creates a command that runs program.
func External(program string, args ...string) Command {
	return Command{Kind: KindExternal, Program: program, Args: args}
}

// Builtin creates a command that runs the named builtin.
func Builtin(name string, args ...string) Command {
	return Command{Kind: KindBuiltin, Program: name, Args: args}
}

// Name is the name errors from the command are attributed to.
func (c Command) Name() string {
	return c.Program
}

// WithRedirects returns a copy of c with redirects appended.
func (c Command) WithRedirects(redirects ...Redirect) Command {
	c.Redirects = append(append([]Redirect(nil), c.Redirects...), redirects...)
	return c
}

// WithEnv returns a copy of c with environment overrides appended.
func (c Command) WithEnv(env ...string) Command {
	c.Env = append(append([]string(nil), c.Env...), env...)
	return c
}

func (c Command) String() string {
	var sb strings.Builder
	for _, e := range c.Env {
		sb.WriteString(e)
		sb.WriteByte(' ')
	}
	sb.WriteString(c.Program)
	for _, a := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(a)
	}
	for _, r := range c.Redirects {
		sb.WriteByte(' ')
		sb.WriteString(r.String())
	}
	return sb.String()
}

// Redirect is a caller supplied change to a stage's descriptors.
type Redirect struct {
	action fdplan.Action
}

// Dup makes dst refer to whatever src refers to (dst>&src).
func Dup(src, dst int) Redirect {
	return Redirect{action: fdplan.DuplicateFd{Source: src, Destination: dst}}
}

// File opens path with mode at fd (fd<path, fd>path, fd>>path).
func File(fd int, path string, mode fdplan.OpenMode) Redirect {
	return Redirect{action: fdplan.OpenFileAsFd{Path: path, Mode: mode, Destination: fd}}
}

// Close closes fd (fd>&-).
func Close(fd int) Redirect {
	return Redirect{action: fdplan.ClosePipeEnd{Fd: fd}}
}

// Action lowers the redirect to the planner action that performs it.
func (r Redirect) Action() fdplan.Action {
	return r.action
}

func (r Redirect) String() string {
	if r.action == nil {
		return ""
	}
	return r.action.String()
}

func destination(a fdplan.Action) int {
	switch a := a.(type) {
	case fdplan.DuplicateFd:
		return a.Destination
	case fdplan.DuplicateFile:
		return a.Destination
	case fdplan.OpenFileAsFd:
		return a.Destination
	case fdplan.ClosePipeEnd:
		return a.Fd
	default:
		return -1
	}
}

// Pipeline is an ordered list of commands, each one's stdout feeding the next
// one's stdin.
type Pipeline []Command

func (p Pipeline) String() string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = c.String()
	}
	return strings.Join(parts, " | ")
}

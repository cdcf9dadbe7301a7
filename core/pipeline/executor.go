package pipeline

import (
	"context"
	"errors"
	"os"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/fdplan"
	"github.com/josephlewis42/fdsh/core/proc"
	"github.com/josephlewis42/fdsh/core/sherr"
	"github.com/rs/zerolog"
)

// PipeFunc creates a connected pipe.
type PipeFunc func() (r, w *os.File, err error)

// Result is the outcome of a pipeline that got past setup.
type Result struct {
	// Status is the status of the last stage.
	Status proc.ExitStatus
	// Stages holds the status of every stage, in pipeline order.
	Stages []proc.ExitStatus
}

// Executor runs pipelines.
//
// An Executor is not safe for concurrent use.
type Executor struct {
	// Stdio are the streams the first stage reads and the last stage writes.
	Stdio fdplan.Stdio
	// Env is the base environment of external commands and the environment
	// builtins see.
	Env *proc.Env
	// Dir is the working directory commands run in.
	Dir string
	// Registry holds the builtins that can be dispatched.
	Registry *builtin.Registry

	Launcher *proc.Launcher
	Planner  *fdplan.Planner
	// Dispatcher runs builtin stages. If nil, one over Registry is created on
	// first use.
	Dispatcher *builtin.Dispatcher
	Logger     zerolog.Logger

	// Pipe creates the pipe between two stages. Defaults to os.Pipe.
	Pipe PipeFunc
}

// NewExecutor creates an executor attached to the controlling process's
// standard streams and environment.
func NewExecutor(reg *builtin.Registry, logger zerolog.Logger) *Executor {
	return &Executor{
		Stdio:      fdplan.OSStdio(),
		Env:        proc.NewOSEnv(),
		Registry:   reg,
		Launcher:   proc.NewLauncher(logger),
		Planner:    fdplan.NewPlanner(logger),
		Dispatcher: builtin.NewDispatcher(reg, logger),
		Logger:     logger,
		Pipe:       os.Pipe,
	}
}

// stage is a command that got started.
type stage struct {
	cmd     Command
	process *proc.Process
	// status is set once the stage finished; builtins finish before
	// the next stage is started.
	status proc.ExitStatus
	done   bool
}

func (s *stage) wait() (proc.ExitStatus, error) {
	if !s.done {
		s.status, _ = s.process.Wait()
		s.done = true
	}
	return s.status, s.status.Err()
}

// Run executes p and waits for every stage to finish.
//
// If a stage can't be set up (its pipe, redirects or spawn fail) no later
// stage is started, the stages already running are waited for, and the setup
// error is returned attributed to the failing command. Otherwise the result
// holds every stage's status; if the last stage failed its error is returned
// too.
//
// ctx is passed through to builtins. It does not interrupt running stages.
func (e *Executor) Run(ctx context.Context, p Pipeline) (*Result, error) {
	if len(p) == 0 {
		return &Result{Status: proc.Exited(0)}, nil
	}

	e.Logger.Debug().Stringer("pipeline", p).Msg("running pipeline")

	var (
		started []*stage
		// prevRead is the parent's copy of the read end of the pipe into
		// the current stage.
		prevRead *os.File
	)

	for i, cmd := range p {
		var read, write *os.File
		if i < len(p)-1 {
			var err error
			read, write, err = e.pipe()
			if err != nil {
				closeFiles(prevRead)
				return nil, e.abort(started, cmd, sherr.NewPipe(err))
			}
			e.Logger.Debug().Int("stage", i).Uint64("read", uint64(read.Fd())).Uint64("write", uint64(write.Fd())).Msg("pipe created")
		}

		s, setupErr := e.start(ctx, i, cmd, stageActions(cmd, prevRead, read, write))

		// The stage holds its own duplicates now, or never will.
		closeErr := closeFiles(prevRead, write)
		prevRead = read

		if setupErr != nil {
			closeFiles(read)
			return nil, e.abort(started, cmd, setupErr)
		}
		started = append(started, s)

		if closeErr != nil {
			closeFiles(read)
			return nil, e.abort(started, cmd, sherr.NewPipeIo(closeErr))
		}
	}

	res := &Result{Stages: make([]proc.ExitStatus, len(started))}
	var lastErr error
	for i, s := range started {
		res.Stages[i], lastErr = s.wait()
		e.Logger.Debug().Int("stage", i).Str("command", s.cmd.Name()).Stringer("status", res.Stages[i]).Msg("stage finished")
	}
	res.Status = res.Stages[len(res.Stages)-1]

	if lastErr != nil {
		return res, sherr.Attribute(p[len(p)-1].Name(), commandError(lastErr))
	}
	return res, nil
}

// start plans a stage's descriptors and launches or dispatches it. The stage's
// table is released before start returns.
func (e *Executor) start(ctx context.Context, i int, cmd Command, actions []fdplan.Action) (*stage, *sherr.CommandError) {
	planner := e.Planner
	if planner == nil {
		planner = fdplan.NewPlanner(e.Logger)
	}
	if e.Dir != "" && planner.Dir == "" {
		scoped := *planner
		scoped.Dir = e.Dir
		planner = &scoped
	}

	table, err := planner.Plan(e.Stdio, actions)
	if err != nil {
		return nil, commandError(err)
	}
	defer table.Close()

	switch cmd.Kind {
	case KindBuiltin:
		status, _ := e.dispatcher().Dispatch(&builtin.Invocation{
			Ctx:  ctx,
			Args: append([]string{cmd.Program}, cmd.Args...),
			Fds:  table,
			Env:  e.env(),
			Dir:  e.Dir,
			Fs:   planner.Fs,
		})
		e.Logger.Debug().Int("stage", i).Str("builtin", cmd.Program).Stringer("status", status).Msg("builtin dispatched")
		return &stage{cmd: cmd, status: status, done: true}, nil

	default:
		launcher := e.Launcher
		if launcher == nil {
			launcher = proc.NewLauncher(e.Logger)
		}
		process, err := launcher.Start(proc.Spec{
			Program: cmd.Program,
			Args:    cmd.Args,
			Env:     e.env().With(cmd.Env),
			Dir:     e.Dir,
		}, table)
		if err != nil {
			return nil, commandError(err)
		}
		e.Logger.Debug().Int("stage", i).Str("program", cmd.Program).Int("pid", process.Pid).Msg("stage launched")
		return &stage{cmd: cmd, process: process}, nil
	}
}

// abort waits for the stages that already started and attributes err to cmd.
func (e *Executor) abort(started []*stage, cmd Command, err *sherr.CommandError) error {
	e.Logger.Debug().Str("command", cmd.Name()).Err(err).Int("waiting", len(started)).Msg("pipeline setup failed")
	for _, s := range started {
		s.wait()
	}
	return sherr.Attribute(cmd.Name(), err)
}

func (e *Executor) dispatcher() *builtin.Dispatcher {
	if e.Dispatcher == nil {
		e.Dispatcher = builtin.NewDispatcher(e.Registry, e.Logger)
	}
	return e.Dispatcher
}

func (e *Executor) pipe() (*os.File, *os.File, error) {
	if e.Pipe == nil {
		return os.Pipe()
	}
	return e.Pipe()
}

func (e *Executor) env() *proc.Env {
	if e.Env == nil {
		e.Env = proc.NewEnv(nil)
	}
	return e.Env
}

// stageActions builds the plan for one stage: its pipe input, the caller's
// redirects, its pipe output, then closes of the parent's pipe descriptors
// the stage has no use for.
func stageActions(cmd Command, prevRead, read, write *os.File) []fdplan.Action {
	var actions []fdplan.Action
	if prevRead != nil {
		actions = append(actions, fdplan.DuplicateFile{File: prevRead, Destination: 0})
	}
	for _, r := range cmd.Redirects {
		actions = append(actions, r.Action())
	}
	if write != nil {
		actions = append(actions, fdplan.DuplicateFile{File: write, Destination: 1})
	}

	installed := make(map[int]bool)
	for _, a := range actions {
		installed[destination(a)] = true
	}
	for _, f := range []*os.File{prevRead, read, write} {
		if f == nil {
			continue
		}
		fd := int(f.Fd())
		if fd > fdplan.MaxFd || installed[fd] {
			continue
		}
		installed[fd] = true
		actions = append(actions, fdplan.ClosePipeEnd{Fd: fd})
	}
	return actions
}

// closeFiles closes every non-nil file and returns the first error.
func closeFiles(files ...*os.File) error {
	var firstErr error
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func commandError(err error) *sherr.CommandError {
	var cmdErr *sherr.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr
	}
	return sherr.NewBuiltin(builtin.Classify(err))
}

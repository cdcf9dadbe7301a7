package proc

import (
	"os"
	"syscall"

	"github.com/josephlewis42/fdsh/core/fdplan"
	"github.com/josephlewis42/fdsh/core/sherr"
	"github.com/rs/zerolog"
)

// Spec describes an external program to run.
type Spec struct {
	// Program is a path, or a name looked up in the PATH of Env.
	Program string
	// Args are the arguments after argv[0].
	Args []string
	// Env is the complete environment of the new process.
	Env []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

func (s Spec) path() string {
	for i := len(s.Env) - 1; i >= 0; i-- {
		if key, value := splitEntry(s.Env[i]); key == "PATH" {
			return value
		}
	}
	return ""
}

// Launcher spawns external programs.
type Launcher struct {
	Logger zerolog.Logger

	// For mocking in tests
	startProcess func(name string, argv []string, attr *os.ProcAttr) (*os.Process, error)
}

// NewLauncher creates a launcher that spawns real processes.
func NewLauncher(logger zerolog.Logger) *Launcher {
	return &Launcher{
		Logger:       logger,
		startProcess: os.StartProcess,
	}
}

// Start spawns spec with fds as its descriptor table. Descriptors are
// duplicated into place in the child after the fork and before the exec; the
// caller still owns fds and should close it once Start returns.
//
// If the spawn fails the child never runs and a StartRealCommand error is
// returned.
func (l *Launcher) Start(spec Spec, fds *fdplan.Table) (*Process, error) {
	name, err := LookPath(spec.Program, spec.path(), spec.Dir)
	if err != nil {
		return nil, sherr.NewStartRealCommand(err)
	}

	argv := append([]string{spec.Program}, spec.Args...)
	attr := &os.ProcAttr{
		Dir:   spec.Dir,
		Env:   spec.Env,
		Files: fds.Files(),
	}

	start := l.startProcess
	if start == nil {
		start = os.StartProcess
	}
	p, err := start(name, argv, attr)
	if err != nil {
		l.Logger.Debug().Str("program", name).Err(err).Msg("spawn failed")
		return nil, sherr.NewStartRealCommand(err)
	}

	l.Logger.Debug().Str("program", name).Int("pid", p.Pid).Ints("fds", fds.Fds()).Msg("process started")
	return &Process{Pid: p.Pid, Name: spec.Program, process: p, logger: l.Logger}, nil
}

// Process is a running external program.
type Process struct {
	Pid  int
	Name string

	process *os.Process
	logger  zerolog.Logger
}

// Wait blocks until the process terminates and reports how it did. A failure
// to retrieve the status is returned as a RealCommandStatus error.
func (p *Process) Wait() (ExitStatus, error) {
	state, err := p.process.Wait()
	if err != nil {
		cmdErr := sherr.NewRealCommandStatus(err)
		return Failed(cmdErr), cmdErr
	}

	status := Exited(state.ExitCode())
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		status = Signaled(ws.Signal())
	}

	p.logger.Debug().Int("pid", p.Pid).Stringer("status", status).Msg("process finished")
	return status, nil
}

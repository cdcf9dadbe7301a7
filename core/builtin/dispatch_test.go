package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/josephlewis42/fdsh/core/fdplan"
	"github.com/josephlewis42/fdsh/core/proc"
	"github.com/josephlewis42/fdsh/core/sherr"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newInvocation runs with stdout and stderr going to a temp file, the returned
// function reads back what was written.
func newInvocation(t *testing.T, args ...string) (*Invocation, func() string) {
	t.Helper()

	out, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })

	table, err := fdplan.NewPlanner(zerolog.Nop()).Plan(fdplan.Stdio{Stdout: out, Stderr: out}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })

	inv := &Invocation{
		Ctx:  context.Background(),
		Args: args,
		Fds:  table,
		Env:  proc.NewEnv(nil),
	}
	return inv, func() string {
		b, err := os.ReadFile(out.Name())
		require.NoError(t, err)
		return string(b)
	}
}

func failWith(err error) Builtin {
	return Func(func(*Invocation) (proc.ExitStatus, error) {
		return proc.Exited(1), err
	})
}

type appError struct {
	msg   string
	cause error
}

func (a *appError) Error() string { return a.msg }
func (a *appError) Cause() error  { return a.cause }

func TestClassify(t *testing.T) {
	already := sherr.NewBuiltinError(sherr.Lock, errors.New("held"))

	cases := map[string]struct {
		err  error
		kind sherr.BuiltinKind
	}{
		"args":      {Usagef("unexpected argument %q", "x"), sherr.Args},
		"lock":      {&LockError{Resource: "history", Err: syscall.EWOULDBLOCK}, sherr.Lock},
		"path":      {&os.PathError{Op: "open", Path: "x", Err: syscall.ENOENT}, sherr.IO},
		"wrapped":   {fmt.Errorf("reading: %w", &os.PathError{Op: "read", Path: "x", Err: syscall.EIO}), sherr.IO},
		"link":      {&os.LinkError{Op: "rename", Old: "a", New: "b", Err: syscall.EXDEV}, sherr.IO},
		"eof":       {io.ErrUnexpectedEOF, sherr.IO},
		"closed":    {os.ErrClosed, sherr.IO},
		"errno":     {syscall.EPERM, sherr.Sys},
		"syscall":   {os.NewSyscallError("setpgid", syscall.ESRCH), sherr.Sys},
		"foreign":   {&appError{msg: "config invalid"}, sherr.Other},
		"arbitrary": {errors.New("something else"), sherr.Other},
		"typed":     {already, sherr.Lock},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			be := Classify(tc.err)

			assert.Equal(t, tc.kind, be.Kind)
			assert.Equal(t, tc.err.Error(), be.Error())
		})
	}

	assert.Same(t, already, Classify(already))

	wrapped := Classify(fmt.Errorf("reading: %w", io.ErrUnexpectedEOF))
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))

	cause := errors.New("disk quota")
	foreignErr := Classify(&appError{msg: "config invalid", cause: cause})
	assert.True(t, errors.Is(foreignErr, cause))
}

func TestDispatcher_success(t *testing.T) {
	reg := NewRegistry()
	reg.Register("greet", Func(func(inv *Invocation) (proc.ExitStatus, error) {
		fmt.Fprintf(inv.Stdout(), "hello %s\n", inv.Args[1])
		return proc.Exited(0), nil
	}))
	d := NewDispatcher(reg, zerolog.Nop())

	inv, output := newInvocation(t, "greet", "world")
	status, err := d.Dispatch(inv)
	require.NoError(t, err)
	assert.True(t, status.Success())
	assert.Equal(t, "hello world\n", output())
}

func TestDispatcher_nonZeroIsNotAnError(t *testing.T) {
	reg := NewRegistry()
	reg.Register("false", Func(func(*Invocation) (proc.ExitStatus, error) {
		return proc.Exited(1), nil
	}))

	inv, _ := newInvocation(t, "false")
	status, err := NewDispatcher(reg, zerolog.Nop()).Dispatch(inv)

	require.NoError(t, err)
	code, ok := status.Exited()
	assert.True(t, ok)
	assert.Equal(t, 1, code)
}

func TestDispatcher_failure(t *testing.T) {
	cause := &LockError{Resource: "/tmp/history", Err: syscall.EWOULDBLOCK}
	reg := NewRegistry()
	reg.Register("history", failWith(cause))

	inv, _ := newInvocation(t, "history")
	status, err := NewDispatcher(reg, zerolog.Nop()).Dispatch(inv)

	var cmdErr *sherr.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, sherr.Builtin, cmdErr.Kind)

	var be *sherr.BuiltinError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, sherr.Lock, be.Kind)
	assert.True(t, errors.Is(err, syscall.EWOULDBLOCK))
	assert.Equal(t, err, status.Err())
	assert.EqualError(t, err, "could not lock /tmp/history: "+syscall.EWOULDBLOCK.Error())
}

func TestDispatcher_unknown(t *testing.T) {
	inv, _ := newInvocation(t, "nope")
	_, err := NewDispatcher(NewRegistry(), zerolog.Nop()).Dispatch(inv)

	assert.True(t, errors.Is(err, ErrUnknownBuiltin))
	assert.EqualError(t, err, "unknown builtin")
}

func TestDispatcher_writeToClosedStdout(t *testing.T) {
	reg := NewRegistry()
	reg.Register("say", Func(func(inv *Invocation) (proc.ExitStatus, error) {
		if _, err := io.WriteString(inv.Stdout(), "lost"); err != nil {
			return proc.Exited(1), err
		}
		return proc.Exited(0), nil
	}))

	table, err := fdplan.NewPlanner(zerolog.Nop()).Plan(fdplan.Stdio{}, []fdplan.Action{fdplan.ClosePipeEnd{Fd: 1}})
	require.NoError(t, err)
	defer table.Close()

	_, err = NewDispatcher(reg, zerolog.Nop()).Dispatch(&Invocation{Args: []string{"say"}, Fds: table})

	var be *sherr.BuiltinError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, sherr.IO, be.Kind)
	assert.True(t, errors.Is(err, syscall.EBADF))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register("b", failWith(nil))
	reg.Register("a", failWith(nil))

	assert.Equal(t, []string{"a", "b"}, reg.Names())

	_, ok := reg.Lookup("a")
	assert.True(t, ok)
	_, ok = reg.Lookup("c")
	assert.False(t, ok)

	var nilReg *Registry
	_, ok = nilReg.Lookup("a")
	assert.False(t, ok)
}

func TestSimpleCommand(t *testing.T) {
	run := func(args ...string) (string, proc.ExitStatus, error) {
		cmd := &SimpleCommand{Use: "greet [-l] NAME", Short: "Greet someone."}
		loud := cmd.Flags().Bool('l', "greet loudly")

		inv, output := newInvocation(t, args...)
		status, err := cmd.RunE(inv, func() error {
			if len(cmd.Flags().Args()) != 1 {
				return Usagef("expected one NAME")
			}
			greeting := "hello"
			if *loud {
				greeting = "HELLO"
			}
			fmt.Fprintln(inv.Stdout(), greeting, cmd.Flags().Arg(0))
			return nil
		})
		return output(), status, err
	}

	t.Run("ok", func(t *testing.T) {
		out, status, err := run("greet", "-l", "bob")
		require.NoError(t, err)
		assert.True(t, status.Success())
		assert.Equal(t, "HELLO bob\n", out)
	})

	t.Run("bad-flag", func(t *testing.T) {
		out, _, err := run("greet", "-z", "bob")
		var argsErr *ArgsError
		assert.True(t, errors.As(err, &argsErr))
		assert.Empty(t, out)
	})

	t.Run("callback-usage", func(t *testing.T) {
		_, _, err := run("greet")
		assert.Equal(t, sherr.Args, Classify(err).Kind)
	})

	t.Run("help", func(t *testing.T) {
		out, status, err := run("greet", "--help")
		require.NoError(t, err)
		assert.True(t, status.Success())
		assert.Contains(t, out, "usage: greet [-l] NAME\nGreet someone.\n")
	})
}

func TestLockFile(t *testing.T) {
	fs := afero.NewOsFs()
	path := filepath.Join(t.TempDir(), "history")

	held, err := LockFile(fs, path, os.O_CREATE|os.O_RDWR, 0600)
	require.NoError(t, err)

	_, err = LockFile(fs, path, os.O_RDWR, 0600)
	var lockErr *LockError
	require.True(t, errors.As(err, &lockErr))
	assert.Equal(t, path, lockErr.Resource)
	assert.Equal(t, sherr.Lock, Classify(err).Kind)

	require.NoError(t, held.Close())

	again, err := LockFile(fs, path, os.O_RDWR, 0600)
	require.NoError(t, err)
	require.NoError(t, again.Close())

	_, err = LockFile(fs, filepath.Join(path, "not-a-dir"), os.O_RDWR, 0600)
	assert.Equal(t, sherr.IO, Classify(err).Kind)
}

func TestLockFile_notFdBacked(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := LockFile(fs, "/history", os.O_CREATE|os.O_RDWR, 0600)

	assert.True(t, errors.Is(err, fdplan.ErrNotFdBacked))
	assert.Equal(t, sherr.IO, Classify(err).Kind)
}

func TestInvocation_files(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/notes.txt", []byte("notes"), 0644))

	inv := &Invocation{Dir: "/work", Fs: fs}
	assert.Equal(t, "/work/notes.txt", inv.Path("notes.txt"))
	assert.Equal(t, "/etc/passwd", inv.Path("/etc/passwd"))

	f, err := inv.Open("notes.txt")
	require.NoError(t, err)
	defer f.Close()

	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "notes", string(b))

	assert.IsType(t, &afero.OsFs{}, (&Invocation{}).FS())
}

package proc

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/josephlewis42/fdsh/core/fdplan"
	"github.com/josephlewis42/fdsh/core/fdplan/fdtest"
	"github.com/josephlewis42/fdsh/core/sherr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh available")
	}
	return sh
}

func plan(t *testing.T, base fdplan.Stdio, actions ...fdplan.Action) *fdplan.Table {
	t.Helper()
	table, err := fdplan.NewPlanner(zerolog.Nop()).Plan(base, actions)
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })
	return table
}

func TestLauncher_exitCode(t *testing.T) {
	sh := requireShell(t)
	launcher := NewLauncher(zerolog.Nop())

	p, err := launcher.Start(Spec{Program: sh, Args: []string{"-c", "exit 3"}}, plan(t, fdplan.Stdio{}))
	require.NoError(t, err)

	status, err := p.Wait()
	require.NoError(t, err)
	code, ok := status.Exited()
	assert.True(t, ok)
	assert.Equal(t, 3, code)
	assert.False(t, status.Success())
}

func TestLauncher_signaled(t *testing.T) {
	sh := requireShell(t)
	launcher := NewLauncher(zerolog.Nop())

	p, err := launcher.Start(Spec{Program: sh, Args: []string{"-c", "kill -TERM $$"}}, plan(t, fdplan.Stdio{}))
	require.NoError(t, err)

	status, err := p.Wait()
	require.NoError(t, err)
	sig, ok := status.Signaled()
	assert.True(t, ok)
	assert.Equal(t, syscall.SIGTERM, sig)
	assert.Equal(t, 128+int(syscall.SIGTERM), status.Code())
}

func TestLauncher_fdTable(t *testing.T) {
	sh := requireShell(t)
	r, w := fdtest.Pipe(t)
	launcher := NewLauncher(zerolog.Nop())

	table := plan(t, fdplan.Stdio{}, fdplan.DuplicateFd{Source: int(w.Fd()), Destination: 3})
	p, err := launcher.Start(Spec{
		Program: sh,
		Args:    []string{"-c", `echo "$GREETING" >&3`},
		Env:     []string{"GREETING=hello"},
	}, table)
	require.NoError(t, err)

	// Release every parent copy of the write end so the read sees EOF.
	require.NoError(t, table.Close())
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	status, err := p.Wait()
	require.NoError(t, err)
	assert.True(t, status.Success())
}

func TestLauncher_pathLookup(t *testing.T) {
	sh := requireShell(t)
	launcher := NewLauncher(zerolog.Nop())

	p, err := launcher.Start(Spec{
		Program: "sh",
		Args:    []string{"-c", "exit 0"},
		Env:     []string{"PATH=" + filepath.Dir(sh)},
	}, plan(t, fdplan.Stdio{}))
	require.NoError(t, err)

	status, err := p.Wait()
	require.NoError(t, err)
	assert.True(t, status.Success())
}

func TestLauncher_startFailure(t *testing.T) {
	launcher := NewLauncher(zerolog.Nop())

	t.Run("missing-path", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "foo")

		_, err := launcher.Start(Spec{Program: missing}, plan(t, fdplan.Stdio{}))

		var cmdErr *sherr.CommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, sherr.StartRealCommand, cmdErr.Kind)
		assert.True(t, errors.Is(err, syscall.ENOENT))
	})

	t.Run("not-in-path", func(t *testing.T) {
		_, err := launcher.Start(Spec{Program: "foo", Env: []string{"PATH=" + t.TempDir()}}, plan(t, fdplan.Stdio{}))

		assert.True(t, errors.Is(err, ErrNotFound))
		assert.EqualError(t, err, `exec: "foo": executable file not found in $PATH`)
	})

	t.Run("not-executable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "script")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0600))

		_, err := launcher.Start(Spec{Program: path}, plan(t, fdplan.Stdio{}))

		assert.True(t, errors.Is(err, &sherr.CommandError{Kind: sherr.StartRealCommand}))
	})

	t.Run("injected", func(t *testing.T) {
		injected := errors.New("resource temporarily unavailable")
		l := NewLauncher(zerolog.Nop())
		l.startProcess = func(string, []string, *os.ProcAttr) (*os.Process, error) {
			return nil, injected
		}

		_, err := l.Start(Spec{Program: "/bin/true"}, plan(t, fdplan.Stdio{}))

		assert.True(t, errors.Is(err, injected))
	})
}

func TestProcess_waitTwice(t *testing.T) {
	sh := requireShell(t)
	launcher := NewLauncher(zerolog.Nop())

	p, err := launcher.Start(Spec{Program: sh, Args: []string{"-c", "exit 0"}}, plan(t, fdplan.Stdio{}))
	require.NoError(t, err)
	_, err = p.Wait()
	require.NoError(t, err)

	status, err := p.Wait()

	var cmdErr *sherr.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, sherr.RealCommandStatus, cmdErr.Kind)
	assert.Same(t, cmdErr, status.Err())
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), nil, 0600))

	found, err := LookPath("tool", "/nonexistent:"+dir, "")
	require.NoError(t, err)
	assert.Equal(t, exe, found)

	_, err = LookPath("data", dir, "")
	assert.True(t, errors.Is(err, ErrNotFound))

	found, err = LookPath("tool", "bin", filepath.Dir(dir))
	assert.Error(t, err)
	assert.Empty(t, found)

	found, err = LookPath("./anything", "", "")
	require.NoError(t, err)
	assert.Equal(t, "./anything", found)
}

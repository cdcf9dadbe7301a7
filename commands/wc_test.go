package commands

import (
	"errors"
	"github.com/josephlewis42/fdsh/core/builtin"
	"testing"

	"github.com/josephlewis42/fdsh/core/sherr"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWc(t *testing.T) {
	cases := goldenTestSuite{
		"no-arg":  {Args: []string{"wc"}, Stdin: "Hello,\nworld !"},
		"lines":   {Args: []string{"wc", "-l"}, Stdin: "a\nb\nc\n"},
		"missing": {Args: []string{"wc", "does not exist.txt"}},
	}

	cases.Run(t, Wc)
}

func TestWc_single_file(t *testing.T) {
	cmd := newTestCommand("wc", "/foo.txt")

	// Test with missing file
	{
		_, err := cmd.Output(t, builtin.Func(Wc))
		assert.Error(t, err)
		assert.False(t, cmd.ExitStatus.Success(), "exit code")
	}
	{
		// Create file and
		helloWorld := []byte("Hello,\nworld !")
		require.NoError(t, afero.WriteFile(cmd.Fs, "/foo.txt", helloWorld, 0600))

		out, err := cmd.Output(t, builtin.Func(Wc))

		require.NoError(t, err)
		assert.True(t, cmd.ExitStatus.Success(), "exit code")
		assert.Equal(t, "1 3 14 /foo.txt\n", out)
	}
}

func TestWc_multipleFiles(t *testing.T) {
	cmd := newTestCommand("wc", "-lm", "a.txt", "b.txt")
	require.NoError(t, afero.WriteFile(cmd.Fs, "/a.txt", []byte("héllo\n"), 0600))
	require.NoError(t, afero.WriteFile(cmd.Fs, "/b.txt", []byte("x\ny\n"), 0600))

	out, err := cmd.Output(t, builtin.Func(Wc))

	require.NoError(t, err)
	assert.Equal(t, "1 6 a.txt\n2 4 b.txt\n3 10 total\n", out)
}

func TestWc_exclusiveFlags(t *testing.T) {
	_, err := newTestCommand("wc", "-c", "-m").Output(t, builtin.Func(Wc))

	var be *sherr.BuiltinError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, sherr.Args, be.Kind)
}

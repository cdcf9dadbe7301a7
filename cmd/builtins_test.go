package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinsCmd(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"builtins"})
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())

	assert.Regexp(t, `(?m)^echo +Display a line of text\.$`, out.String())
	assert.True(t, strings.HasPrefix(out.String(), ": "))
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"init", dir})
	t.Cleanup(func() { rootCmd.SetErr(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
}

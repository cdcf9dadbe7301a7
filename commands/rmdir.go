package commands

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

var errDirNotEmpty = errors.New("directory not empty")

// Rmdir implements a POSIX rmdir command.
func Rmdir(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "rmdir [OPTION...] DIRECTORY...",
		Short: "Remove empty directories.",
	}

	parents := cmd.Flags().BoolLong("parents", 'p', "remove DIRECTORY and its ancestors")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print line for every deleted directory")

	return cmd.Run(inv, func() (proc.ExitStatus, error) {
		directories := cmd.Flags().Args()
		if len(directories) == 0 {
			return proc.Exited(1), builtin.Usagef("missing operand")
		}

		anyFailed := false
		for _, dir := range directories {
			for _, step := range rmdirSteps(dir, *parents) {
				if err := removeEmptyDir(inv, step); err != nil {
					fmt.Fprintf(inv.Stderr(), "rmdir: failed to remove %q: %s\n", step, err)
					anyFailed = true
					break
				}
				if *verbose {
					fmt.Fprintf(inv.Stdout(), "rmdir: removed directory: %s\n", step)
				}
			}
		}

		if anyFailed {
			return proc.Exited(1), nil
		}
		return proc.Exited(0), nil
	})
}

// rmdirSteps lists the directories to remove for dir, deepest first.
func rmdirSteps(dir string, parents bool) []string {
	dir = path.Clean(dir)
	if !parents {
		return []string{dir}
	}

	var steps []string
	for i := len(dir); i > 0; i = strings.LastIndex(dir[:i], "/") {
		steps = append(steps, dir[:i])
	}
	return steps
}

func removeEmptyDir(inv *builtin.Invocation, dir string) error {
	file, err := inv.Open(dir)
	if err != nil {
		return err
	}
	contents, err := file.Readdirnames(1)
	file.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if len(contents) > 0 {
		return errDirNotEmpty
	}
	return inv.FS().Remove(inv.Path(dir))
}

var _ builtin.Func = Rmdir

func init() {
	mustAddBuiltin("rmdir", "Remove empty directories.", Rmdir)
}

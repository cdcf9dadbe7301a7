package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// Rm implements a POSIX rm command.
func Rm(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "rm [OPTION...] FILE...",
		Short: "Remove files or directories.",
	}

	recursive := cmd.Flags().BoolLong("recursive", 'r', "remove directories and their contents recursively")
	force := cmd.Flags().BoolLong("force", 'f', "ignore missing files and arguments, never prompt")

	return cmd.Run(inv, func() (proc.ExitStatus, error) {
		files := cmd.Flags().Args()
		if len(files) == 0 && !*force {
			return proc.Exited(1), builtin.Usagef("missing operand")
		}

		fsys := inv.FS()
		anyFailed := false
		for _, file := range files {
			path := inv.Path(file)
			stat, statErr := fsys.Stat(path)

			var err error
			switch {
			case errors.Is(statErr, fs.ErrNotExist):
				if !*force {
					fmt.Fprintf(inv.Stderr(), "rm: can't remove %q: no such file or directory\n", file)
					anyFailed = true
				}
				continue
			case statErr != nil:
				fmt.Fprintf(inv.Stderr(), "rm: can't stat %q: %v\n", file, statErr)
				anyFailed = true
				continue
			case stat.IsDir() && !*recursive:
				fmt.Fprintf(inv.Stderr(), "rm: can't remove %q: is a directory\n", file)
				anyFailed = true
				continue
			case stat.IsDir():
				err = fsys.RemoveAll(path)
			default:
				err = fsys.Remove(path)
			}

			if err != nil {
				fmt.Fprintf(inv.Stderr(), "rm: can't remove %q: %v\n", file, err)
				anyFailed = true
			}
		}

		if anyFailed {
			return proc.Exited(1), nil
		}
		return proc.Exited(0), nil
	})
}

var _ builtin.Func = Rm

func init() {
	mustAddBuiltin("rm", "Remove files or directories.", Rm)
}

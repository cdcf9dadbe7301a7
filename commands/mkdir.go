package commands

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// Mkdir implements a POSIX mkdir command.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/mkdir.html
func Mkdir(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "mkdir [OPTION...] DIRECTORY...",
		Short: "Create directories if they don't exist.",
	}

	makeParents := cmd.Flags().BoolLong("parents", 'p', "make parents if needed")
	verbose := cmd.Flags().BoolLong("verbose", 'v', "print line for every created directory")
	modeExpr := cmd.Flags().StringLong("mode", 'm', "", "set the mode of created directories, as in chmod", "MODE")

	return cmd.Run(inv, func() (proc.ExitStatus, error) {
		directories := cmd.Flags().Args()
		if len(directories) == 0 {
			return proc.Exited(1), builtin.Usagef("missing operand")
		}

		// -m is relative to a=rwx and ignores the umask.
		mode := fs.FileMode(0777)
		if *modeExpr != "" {
			var err error
			if mode, err = ChmodApplyMode(*modeExpr, mode); err != nil {
				return proc.Exited(1), builtin.Usagef("invalid mode %q", *modeExpr)
			}
		}

		fsys := inv.FS()
		var op func(path string, perm os.FileMode) error
		if *makeParents {
			op = fsys.MkdirAll
		} else {
			op = fsys.Mkdir
		}

		anyFailed := false
		for _, dir := range directories {
			err := op(inv.Path(dir), 0777)
			if err == nil && *modeExpr != "" {
				err = fsys.Chmod(inv.Path(dir), mode)
			}

			switch {
			case err != nil:
				fmt.Fprintf(inv.Stderr(), "mkdir: cannot create directory %q: %s\n", dir, err)
				anyFailed = true

			case *verbose:
				fmt.Fprintf(inv.Stdout(), "mkdir: created directory: %s\n", dir)
			}
		}

		if anyFailed {
			return proc.Exited(1), nil
		}
		return proc.Exited(0), nil
	})
}

var _ builtin.Func = Mkdir

func init() {
	mustAddBuiltin("mkdir", "Create directories.", Mkdir)
}

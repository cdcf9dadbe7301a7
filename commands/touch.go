package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// Touch implements a POSIX touch command.
func Touch(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "touch [OPTION...] FILE...",
		Short: "Update the access and modification times of files to now.",
	}

	accessOnly := cmd.Flags().Bool('a', "only change the access time")
	// The old access time can't be read back, so -m sets it as well.
	modifyOnly := cmd.Flags().Bool('m', "only change the modification time")
	noCreate := cmd.Flags().BoolLong("no-create", 'c', "don't create files")
	reference := cmd.Flags().StringLong("reference", 'r', "", "use this file's modification time instead of now", "FILE")

	return cmd.Run(inv, func() (proc.ExitStatus, error) {
		paths := cmd.Flags().Args()
		if len(paths) == 0 {
			return proc.Exited(1), builtin.Usagef("missing file operand")
		}

		fsys := inv.FS()
		when := time.Now()
		if *reference != "" {
			fi, err := fsys.Stat(inv.Path(*reference))
			if err != nil {
				fmt.Fprintf(inv.Stderr(), "touch: failed to get attributes of %q: %s\n", *reference, err)
				return proc.Exited(1), nil
			}
			when = fi.ModTime()
		}

		var anyFailed bool
		for _, path := range paths {
			mtime := when
			if *accessOnly && !*modifyOnly {
				if fi, err := fsys.Stat(inv.Path(path)); err == nil {
					mtime = fi.ModTime()
				}
			}

			err := fsys.Chtimes(inv.Path(path), when, mtime)
			switch {
			case errors.Is(err, fs.ErrNotExist) && !*noCreate:
				fd, err := fsys.Create(inv.Path(path))
				if err != nil {
					fmt.Fprintf(inv.Stderr(), "touch: cannot touch %q: %s\n", path, err)
					anyFailed = true
					continue
				}
				fd.Close()
				if err := fsys.Chtimes(inv.Path(path), when, when); err != nil {
					fmt.Fprintf(inv.Stderr(), "touch: setting times of %q: %s\n", path, err)
					anyFailed = true
				}
			case errors.Is(err, fs.ErrNotExist) && *noCreate:
				// Not an error.
			case err != nil:
				fmt.Fprintf(inv.Stderr(), "touch: setting times of %q: %s\n", path, err)
				anyFailed = true
			}
		}

		if anyFailed {
			return proc.Exited(1), nil
		}
		return proc.Exited(0), nil
	})
}

var _ builtin.Func = Touch

func init() {
	mustAddBuiltin("touch", "Update file times, creating missing files.", Touch)
}

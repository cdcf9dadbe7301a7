package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// EnvHistFile names the file the history builtin keeps entries in.
const EnvHistFile = "HISTFILE"

// ErrNoHistFile is returned by history when HISTFILE isn't set.
var ErrNoHistFile = errors.New("HISTFILE is not set")

// History displays or manipulates the history file. The file is locked while
// it's in use so concurrent shells don't interleave entries.
func History(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "history [-c] [-s ARG...]",
		Short: "Display or manipulate the history list.",
	}
	opts := cmd.Flags()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	store := opts.Bool('s', "store the ARGs in the history list as a single entry")

	return cmd.RunE(inv, func() error {
		if *clear && *store {
			return builtin.Usagef("-c and -s are mutually exclusive")
		}
		if !*store && len(opts.Args()) > 0 {
			return builtin.Usagef("too many arguments")
		}

		var path string
		if inv.Env != nil {
			path = inv.Env.Getenv(EnvHistFile)
		}
		if path == "" {
			return ErrNoHistFile
		}
		path = inv.Path(path)

		switch {
		case *clear:
			lock, err := builtin.LockFile(inv.FS(), path, os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return err
			}
			defer lock.Close()
			return lock.Truncate(0)

		case *store:
			lock, err := builtin.LockFile(inv.FS(), path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				return err
			}
			defer lock.Close()
			_, err = fmt.Fprintln(lock, strings.Join(opts.Args(), " "))
			return err

		default:
			lock, err := builtin.LockFile(inv.FS(), path, os.O_RDONLY, 0)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			defer lock.Close()
			return printHistory(inv.Stdout(), lock)
		}
	})
}

func printHistory(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		fmt.Fprintf(bw, "%5d  %s\n", i, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

var _ builtin.Func = History

func init() {
	mustAddBuiltin("history", "Display or manipulate the history list.", History)
}

package commands

import (
	"fmt"
	"os"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// Pwd implements the UNIX pwd command.
func Pwd(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "pwd",
		Short: "Print the name of the current working directory.",
	}

	return cmd.RunE(inv, func() error {
		if len(cmd.Flags().Args()) > 0 {
			return builtin.Usagef("too many arguments")
		}

		pwd := inv.Dir
		if pwd == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			pwd = wd
		}

		_, err := fmt.Fprintln(inv.Stdout(), pwd)
		return err
	})
}

var _ builtin.Func = Pwd

func init() {
	mustAddBuiltin("pwd", "Print the working directory.", Pwd)
}

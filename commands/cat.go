package commands

import (
	"io"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// Cat implements the UNIX cat command.
func Cat(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "cat [FILE]...",
		Short: "Concatenate FILE(s) to standard output.",
	}

	return cmd.RunE(inv, func() error {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			args = []string{"-"}
		}

		for _, arg := range args {
			if err := catFile(inv, arg); err != nil {
				return err
			}
		}
		return nil
	})
}

func catFile(inv *builtin.Invocation, name string) error {
	if name == "-" {
		_, err := io.Copy(inv.Stdout(), inv.Stdin())
		return err
	}

	fd, err := inv.Open(name)
	if err != nil {
		return err
	}
	defer fd.Close()

	_, err = io.Copy(inv.Stdout(), fd)
	return err
}

var _ builtin.Func = Cat

func init() {
	mustAddBuiltin("cat", "Concatenate files to standard output.", Cat)
}

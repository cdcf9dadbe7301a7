package commands

import (
	"fmt"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// NoOpCommand is a builtin that ignores its arguments, optionally prints a
// fixed line and exits with a fixed code.
type NoOpCommand struct {
	Name     string
	Use      string
	Short    string
	Stdout   string
	ExitCode int
}

// ToBuiltin converts the no-op command description to a functioning builtin.
func (c *NoOpCommand) ToBuiltin() builtin.Func {
	return func(inv *builtin.Invocation) (proc.ExitStatus, error) {
		cmd := &builtin.SimpleCommand{
			Use:   c.Use,
			Short: c.Short,
			// Never bail, even if args are bad.
			NeverBail: true,
		}

		return cmd.Run(inv, func() (proc.ExitStatus, error) {
			if c.Stdout != "" {
				if _, err := fmt.Fprintln(inv.Stdout(), c.Stdout); err != nil {
					return proc.Exited(1), err
				}
			}

			return proc.Exited(c.ExitCode), nil
		})
	}
}

var noOpCommands = []NoOpCommand{
	{
		Name:  "true",
		Use:   "true [ignored ...]",
		Short: "Do nothing, successfully.",
	},
	{
		Name:     "false",
		Use:      "false [ignored ...]",
		Short:    "Do nothing, unsuccessfully.",
		ExitCode: 1,
	},
	{
		Name:  ":",
		Use:   ": [ignored ...]",
		Short: "Null command.",
	},
}

func init() {
	for i := range noOpCommands {
		cmd := noOpCommands[i]
		mustAddBuiltin(cmd.Name, cmd.Short, cmd.ToBuiltin())
	}
}

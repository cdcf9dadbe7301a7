package commands

import (
	"fmt"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// Which implements the UNIX which command using the same search external
// commands are started with.
func Which(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "which [COMMAND...]",
		Short: "Locate a command.",
		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.Run(inv, func() (proc.ExitStatus, error) {
		var path string
		if inv.Env != nil {
			path = inv.Env.Getenv("PATH")
		}

		anyFailed := false
		for _, arg := range cmd.Flags().Args() {
			res, err := proc.LookPath(arg, path, inv.Dir)
			if err != nil {
				anyFailed = true
				continue
			}
			if _, err := fmt.Fprintln(inv.Stdout(), res); err != nil {
				return proc.Exited(1), err
			}
		}

		if anyFailed {
			return proc.Exited(1), nil
		}
		return proc.Exited(0), nil
	})
}

var _ builtin.Func = Which

func init() {
	mustAddBuiltin("which", "Locate a command.", Which)
}

package commands

import (
	"io"
	"strings"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// Env implements the POSIX env command without the ability to run a utility.
// Any NAME=VALUE arguments are shown on top of the current environment
// without changing it.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/utilities/env.html
func Env(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "env [-i] [NAME=VALUE]...",
		Short: "Set or print the environment for command invocation.",
	}
	ignore := cmd.Flags().Bool('i', "start with an empty environment")

	return cmd.RunE(inv, func() error {
		overrides := cmd.Flags().Args()
		for _, arg := range overrides {
			if !strings.Contains(arg, "=") {
				return builtin.Usagef("running %q is not supported", arg)
			}
		}

		base := inv.Env
		if base == nil || *ignore {
			base = proc.NewEnv(nil)
		}

		var sb strings.Builder
		for _, envDef := range base.With(overrides) {
			sb.WriteString(envDef)
			sb.WriteString("\n")
		}

		_, err := io.WriteString(inv.Stdout(), sb.String())
		return err
	})
}

// Unset removes variables from the shell environment.
func Unset(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "unset [-v] [NAME...]",
		Short: "Unset shell variables.",
	}
	cmd.Flags().Bool('v', "treat NAME as a variable")

	return cmd.RunE(inv, func() error {
		if inv.Env == nil {
			return nil
		}
		for _, name := range cmd.Flags().Args() {
			inv.Env.Unsetenv(name)
		}
		return nil
	})
}

var _ builtin.Func = Env
var _ builtin.Func = Unset

func init() {
	mustAddBuiltin("env", "Print the environment.", Env)
	mustAddBuiltin("unset", "Unset shell variables.", Unset)
}

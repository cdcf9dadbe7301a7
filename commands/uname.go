package commands

import (
	"strings"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
	"golang.org/x/sys/unix"
)

// Utsname holds the fields uname can print.
type Utsname struct {
	Sysname  string
	Nodename string
	Release  string
	Version  string
	Machine  string
}

// systemUname reads the running kernel's identification.
var systemUname = func() (Utsname, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return Utsname{}, err
	}
	return Utsname{
		Sysname:  unix.ByteSliceToString(u.Sysname[:]),
		Nodename: unix.ByteSliceToString(u.Nodename[:]),
		Release:  unix.ByteSliceToString(u.Release[:]),
		Version:  unix.ByteSliceToString(u.Version[:]),
		Machine:  unix.ByteSliceToString(u.Machine[:]),
	}, nil
}

// Uname implements the POSIX command by the same name.
func Uname(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "uname [OPTION...]",
		Short: "Display system information.",
	}
	opts := cmd.Flags()

	showAll := opts.BoolLong("all", 'a', "print all information")
	showKernelName := opts.BoolLong("kernel-name", 's', "print the kernel name")
	showNodename := opts.BoolLong("nodename", 'n', "print the network node name")
	showRelease := opts.BoolLong("kernel-release", 'r', "print the kernel release")
	showVersion := opts.BoolLong("kernel-version", 'v', "print the kernel version")
	showMachine := opts.BoolLong("machine", 'm', "print the machine name")

	return cmd.RunE(inv, func() error {
		uname, err := systemUname()
		if err != nil {
			return err
		}

		var fields []string
		for _, entry := range []struct {
			flag     *bool
			property string
		}{
			{showKernelName, uname.Sysname},
			{showNodename, uname.Nodename},
			{showRelease, uname.Release},
			{showVersion, uname.Version},
			{showMachine, uname.Machine},
		} {
			if *entry.flag || *showAll {
				fields = append(fields, entry.property)
			}
		}

		if len(fields) == 0 {
			fields = append(fields, uname.Sysname)
		}

		_, err = inv.Stdout().Write([]byte(strings.Join(fields, " ") + "\n"))
		return err
	})
}

var _ builtin.Func = Uname

func init() {
	mustAddBuiltin("uname", "Display system information.", Uname)
}

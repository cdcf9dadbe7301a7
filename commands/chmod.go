package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

const (
	ModeMaskUser  fs.FileMode = 0700
	ModeMaskGroup             = 0070
	ModeMaskOther             = 0007
	ModeMaskAll               = ModeMaskUser | ModeMaskGroup | ModeMaskOther

	ModeRead  fs.FileMode = 0444
	ModeWrite             = 0222
	ModeExec              = 0111

	ChmodMask = ModeMaskAll
)

func blendChmod(origValue, newValue fs.FileMode) fs.FileMode {
	return (origValue &^ ChmodMask) | (newValue & ChmodMask)
}

// ChmodApplyMode applies a symbolic (u+x, go-w, a=r) or octal mode expression
// to orig. Bits outside the permission bits are kept.
func ChmodApplyMode(mode string, orig fs.FileMode) (fs.FileMode, error) {
	// If mode is an octal integer, the value is absolute
	if octalMode, err := strconv.ParseUint(mode, 8, 32); err == nil {
		return blendChmod(orig, fs.FileMode(octalMode)), nil
	}

	var who fs.FileMode
	var apply fs.FileMode
	var action func(orig, who, apply fs.FileMode) fs.FileMode

	// Comma separated clauses and the s and t permissions aren't supported.
	for _, modeChar := range mode {
		switch modeChar {
		// Mask groups
		case 'a':
			who |= ModeMaskAll
		case 'u':
			who |= ModeMaskUser
		case 'g':
			who |= ModeMaskGroup
		case 'o':
			who |= ModeMaskOther
		case '+':
			action = func(orig, who, apply fs.FileMode) fs.FileMode {
				return blendChmod(orig, orig|(apply&who))
			}
		case '=':
			action = func(orig, who, apply fs.FileMode) fs.FileMode {
				return blendChmod(orig, (apply & who))
			}
		case '-':
			action = func(orig, who, apply fs.FileMode) fs.FileMode {
				return blendChmod(orig, orig & ^(apply&who))
			}
		case 'r':
			apply |= ModeRead
		case 'w':
			apply |= ModeWrite
		case 'x':
			apply |= ModeExec
		case 'X':
			if (who&ModeExec) > 0 || (orig&fs.ModeDir) > 0 {
				apply |= ModeExec
			}
		case 's', 't':
			// Not implemented
		default:
			return orig, fmt.Errorf("unknown symbol %q", modeChar)
		}
	}

	if action == nil {
		return orig, errors.New("no action provided")
	}

	if who == 0 {
		who = ModeMaskAll
	}

	return action(orig, who, apply), nil
}

// Chmod implements a POSIX chmod command.
//
// Arguments aren't parsed as flags so modes like -w reach ApplyMode.
func Chmod(inv *builtin.Invocation) (proc.ExitStatus, error) {
	if len(inv.Args) == 2 && (inv.Args[1] == "-h" || inv.Args[1] == "--help") {
		cmd := &builtin.SimpleCommand{
			Use:   "chmod MODE FILE...",
			Short: "Change the mode of each FILE to MODE.",
		}
		cmd.PrintHelp(inv.Stdout())
		return proc.Exited(0), nil
	}

	if len(inv.Args) < 3 {
		return proc.Exited(1), builtin.Usagef("usage: chmod MODE FILE...")
	}

	modeExpr := inv.Args[1]
	paths := inv.Args[2:]
	fsys := inv.FS()

	var anyFailed bool
	for _, path := range paths {
		stat, err := fsys.Stat(inv.Path(path))
		if err != nil {
			fmt.Fprintf(inv.Stderr(), "chmod: couldn't stat %s: %v\n", path, err)
			anyFailed = true
			continue
		}

		newMode, err := ChmodApplyMode(modeExpr, stat.Mode())
		if err != nil {
			return proc.Exited(1), builtin.Usage(err)
		}

		if err := fsys.Chmod(inv.Path(path), newMode); err != nil {
			fmt.Fprintf(inv.Stderr(), "chmod: couldn't update %s: %v\n", path, err)
			anyFailed = true
		}
	}

	if anyFailed {
		return proc.Exited(1), nil
	}
	return proc.Exited(0), nil
}

var _ builtin.Func = Chmod

func init() {
	mustAddBuiltin("chmod", "Change file mode bits.", Chmod)
}

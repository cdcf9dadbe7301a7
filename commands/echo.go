package commands

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-8][0-8]?[0-8]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseInt(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return s
}

// Echo implements a limited echo command. With -e, \c ends the output: nothing
// after it is written, including the trailing newline.
func Echo(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "echo [-neE] [ARG] ...",
		Short: "Display a line of text.",
	}

	opt := cmd.Flags()
	escaped := opt.Bool('e', "interpret backslash escapes")
	literal := opt.Bool('E', "don't interpret backslash escapes, overrides -e")
	noNewline := opt.Bool('n', "do not output the trailing newline")

	return cmd.RunE(inv, func() error {
		text, stopped := echoText(opt.Args(), *escaped && !*literal)
		if !stopped && !*noNewline {
			text += "\n"
		}

		_, err := io.WriteString(inv.Stdout(), text)
		return err
	})
}

// echoText joins args with spaces. If escapes are interpreted and one
// contains \c, the text is cut there and stopped is true.
func echoText(args []string, escapes bool) (text string, stopped bool) {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(" ")
		}

		if escapes {
			if before, _, found := strings.Cut(arg, `\c`); found {
				sb.WriteString(unescape(before))
				return sb.String(), true
			}
			arg = unescape(arg)
		}

		sb.WriteString(arg)
	}
	return sb.String(), false
}

var _ builtin.Func = Echo

func init() {
	mustAddBuiltin("echo", "Display a line of text.", Echo)
}

package commands

import (
	"bufio"
	"fmt"
	"io"
	"regexp"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

// Grep implements the POSIX grep command. It exits 0 if any line was
// selected, 1 if none were and 2 on errors.
//
// https://pubs.opengroup.org/onlinepubs/9699919799.2018edition/
func Grep(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "grep [-inv] PATTERN [FILE]...",
		Short: "Search files for text matching a pattern.",
	}

	invert := cmd.Flags().Bool('v', "Select lines not matching any of the specified patterns.")
	ignoreCase := cmd.Flags().Bool('i', "Perform pattern matching in searches without regard to case.")
	showLineNumbers := cmd.Flags().Bool('n', "Show line numbers.")

	return cmd.Run(inv, func() (proc.ExitStatus, error) {
		args := cmd.Flags().Args()
		if len(args) == 0 {
			return proc.Exited(2), builtin.Usagef("missing argument PATTERN")
		}

		// Newline separated PATTERNs are treated as a single pattern.
		pattern := args[0]
		if *ignoreCase {
			pattern = "(?i)" + pattern
		}
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return proc.Exited(2), builtin.Usage(err)
		}

		g := &grepper{
			regex:           regex,
			invert:          *invert,
			showLineNumbers: *showLineNumbers,
			w:               bufio.NewWriter(inv.Stdout()),
		}

		files := args[1:]
		if len(files) == 0 {
			err = g.grep("(standard input)", inv.Stdin())
		}
		g.showFileName = len(files) > 1
		for _, name := range files {
			if err != nil {
				break
			}
			err = g.grepFile(inv, name)
		}
		if flushErr := g.w.Flush(); err == nil {
			err = flushErr
		}

		switch {
		case err != nil:
			return proc.Exited(2), err
		case g.selected == 0:
			return proc.Exited(1), nil
		default:
			return proc.Exited(0), nil
		}
	})
}

type grepper struct {
	regex           *regexp.Regexp
	invert          bool
	showLineNumbers bool
	showFileName    bool

	w        *bufio.Writer
	selected int
}

func (g *grepper) grepFile(inv *builtin.Invocation, name string) error {
	fd, err := inv.Open(name)
	if err != nil {
		return err
	}
	defer fd.Close()
	return g.grep(name, fd)
}

func (g *grepper) grep(name string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Bytes()
		if g.regex.Match(line) == g.invert {
			continue
		}
		g.selected++

		if g.showFileName {
			fmt.Fprintf(g.w, "%s:", name)
		}
		if g.showLineNumbers {
			fmt.Fprintf(g.w, "%d:", lineNo)
		}
		g.w.Write(line)
		g.w.WriteByte('\n')
	}
	return scanner.Err()
}

var _ builtin.Func = Grep

func init() {
	mustAddBuiltin("grep", "Search files for text matching a pattern.", Grep)
}

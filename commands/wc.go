package commands

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/proc"
)

type wcCount struct {
	bytes int
	lines int
	chars int
	words int
	name  string

	inSpace bool
}

func (w *wcCount) Write(data []byte) (int, error) {
	for _, c := range data {
		isFirstByte := w.bytes == 0
		w.bytes++

		// Assume UTF-8 characters. Bytes following the leading byte always
		// have MSB of 0b10 indicating they're part of a previous character.
		if c < 0b10000000 || c > 0b10111111 {
			w.chars++
		}

		if c == '\n' {
			w.lines++
		}

		if unicode.IsSpace(rune(c)) {
			w.inSpace = true
		} else {
			if w.inSpace || isFirstByte {
				w.words++
			}
			w.inSpace = false
		}
	}

	return len(data), nil
}

func newWcCount(name string, fd io.Reader) (*wcCount, error) {
	var out wcCount
	out.name = name

	if _, err := io.Copy(&out, fd); err != nil {
		return nil, err
	}

	return &out, nil
}

func (w *wcCount) Increment(other *wcCount) {
	w.bytes += other.bytes
	w.chars += other.chars
	w.lines += other.lines
	w.words += other.words
}

// Wc implements the POSIX command by the same name.
// https://pubs.opengroup.org/onlinepubs/009695399/utilities/wc.html
func Wc(inv *builtin.Invocation) (proc.ExitStatus, error) {
	cmd := &builtin.SimpleCommand{
		Use:   "wc [-c|-m] [-lw] [FILE...]",
		Short: "Write the number of newlines, words, and bytes contained in each input file to the standard output.",
	}

	opts := cmd.Flags()
	writeLines := opts.BoolLong("l", 'l', "write the number of newlines in each file")
	writeWords := opts.BoolLong("w", 'w', "write the number of words in each file")
	writeBytes := opts.BoolLong("c", 'c', "write the number of bytes in each file")
	writeChars := opts.BoolLong("m", 'm', "write the number of characters in each file")

	return cmd.RunE(inv, func() error {
		args := opts.Args()

		if *writeBytes && *writeChars {
			return builtin.Usagef("-c and -m are mutually exclusive")
		}

		anyPicked := *writeLines || *writeWords || *writeBytes || *writeChars
		nonePicked := !anyPicked

		var cols []func(*wcCount) string

		if *writeLines || nonePicked {
			cols = append(cols, func(w *wcCount) string {
				return fmt.Sprint(w.lines)
			})
		}
		if *writeWords || nonePicked {
			cols = append(cols, func(w *wcCount) string {
				return fmt.Sprint(w.words)
			})
		}
		if *writeBytes || nonePicked {
			cols = append(cols, func(w *wcCount) string {
				return fmt.Sprint(w.bytes)
			})
		}
		if *writeChars {
			cols = append(cols, func(w *wcCount) string {
				return fmt.Sprint(w.chars)
			})
		}

		displayCount := func(sb *strings.Builder, count *wcCount) {
			for i, col := range cols {
				if i != 0 {
					sb.WriteString(" ")
				}
				sb.WriteString(col(count))
			}
			sb.WriteString("\n")
		}

		writeCounts := func(countsList ...*wcCount) error {
			var sb strings.Builder
			total := &wcCount{name: "total"}

			for _, count := range countsList {
				total.Increment(count)
				displayCount(&sb, count)
			}

			if len(countsList) > 1 {
				displayCount(&sb, total)
			}

			_, err := io.WriteString(inv.Stdout(), sb.String())
			return err
		}

		if len(args) == 0 {
			count, err := newWcCount("", inv.Stdin())
			if err != nil {
				return err
			}
			return writeCounts(count)
		}

		cols = append(cols, func(w *wcCount) string {
			return w.name
		})

		var counts []*wcCount
		for _, path := range args {
			fd, err := inv.Open(path)
			if err != nil {
				return err
			}
			defer fd.Close()

			count, err := newWcCount(path, fd)
			if err != nil {
				return err
			}

			counts = append(counts, count)
		}

		return writeCounts(counts...)
	})
}

var _ builtin.Func = Wc

func init() {
	mustAddBuiltin("wc", "Count newlines, words and bytes.", Wc)
}

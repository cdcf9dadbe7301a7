package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/fdsh/core/builtin"
	"github.com/josephlewis42/fdsh/core/fdplan"
	"github.com/josephlewis42/fdsh/core/pipeline"
)

var (
	redirectRegex = regexp.MustCompile(`^([0-9]*)(>>|<>|>&|<&|>|<)(.*)$`)
	assignRegex   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)
)

// SyntaxError is returned for token lists that don't form a pipeline.
type SyntaxError struct {
	Token string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return "syntax error: unexpected end of input"
	}
	return fmt.Sprintf("syntax error near unexpected token `%s'", e.Token)
}

// ParseLine splits line the way a POSIX shell would quote it, then parses the
// tokens with Parse.
func ParseLine(line string, reg *builtin.Registry) (pipeline.Pipeline, error) {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		return nil, err
	}
	return Parse(tokens, reg)
}

// Parse turns tokens into a pipeline. Stages are separated by "|" tokens.
// Leading NAME=VALUE tokens set the environment of a stage, and redirects
// (<, >, >>, <>, N>&M, N>&-) may appear anywhere in a stage, with or without
// a space before their target. A stage whose name is registered in reg runs as
// a builtin.
func Parse(tokens []string, reg *builtin.Registry) (pipeline.Pipeline, error) {
	var (
		out   pipeline.Pipeline
		stage []string
	)

	for _, tok := range tokens {
		if tok == "|" {
			cmd, err := parseStage(stage, reg)
			if err != nil {
				return nil, err
			}
			if cmd == nil {
				return nil, &SyntaxError{Token: "|"}
			}
			out = append(out, *cmd)
			stage = nil
			continue
		}
		stage = append(stage, tok)
	}

	cmd, err := parseStage(stage, reg)
	switch {
	case err != nil:
		return nil, err
	case cmd == nil && len(out) > 0:
		return nil, &SyntaxError{}
	case cmd != nil:
		out = append(out, *cmd)
	}
	return out, nil
}

func parseStage(tokens []string, reg *builtin.Registry) (*pipeline.Command, error) {
	var (
		env       []string
		words     []string
		redirects []pipeline.Redirect
	)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if m := redirectRegex.FindStringSubmatch(tok); m != nil {
			target := m[3]
			if target == "" {
				if i+1 >= len(tokens) {
					return nil, &SyntaxError{}
				}
				i++
				target = tokens[i]
			}

			r, err := parseRedirect(m[1], m[2], target)
			if err != nil {
				return nil, err
			}
			redirects = append(redirects, r)
			continue
		}

		if len(words) == 0 && assignRegex.MatchString(tok) {
			env = append(env, tok)
			continue
		}

		words = append(words, tok)
	}

	if len(words) == 0 {
		if len(env) > 0 || len(redirects) > 0 {
			return nil, &SyntaxError{Token: strings.Join(tokens, " ")}
		}
		return nil, nil
	}

	var cmd pipeline.Command
	if _, ok := reg.Lookup(words[0]); ok {
		cmd = pipeline.Builtin(words[0], words[1:]...)
	} else {
		cmd = pipeline.External(words[0], words[1:]...)
	}
	cmd.Env = env
	cmd.Redirects = redirects
	return &cmd, nil
}

func parseRedirect(fdText, op, target string) (pipeline.Redirect, error) {
	fd := 1
	if op[0] == '<' {
		fd = 0
	}
	if fdText != "" {
		n, err := strconv.Atoi(fdText)
		if err != nil {
			return pipeline.Redirect{}, &SyntaxError{Token: fdText + op}
		}
		fd = n
	}

	switch op {
	case ">&", "<&":
		if target == "-" {
			return pipeline.Close(fd), nil
		}
		src, err := strconv.Atoi(target)
		if err != nil {
			return pipeline.Redirect{}, &SyntaxError{Token: target}
		}
		return pipeline.Dup(src, fd), nil
	case "<":
		return pipeline.File(fd, target, fdplan.ModeRead), nil
	case ">":
		return pipeline.File(fd, target, fdplan.ModeWrite), nil
	case ">>":
		return pipeline.File(fd, target, fdplan.ModeAppend), nil
	default:
		return pipeline.File(fd, target, fdplan.ModeReadWrite), nil
	}
}

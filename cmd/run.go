package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/josephlewis42/fdsh/commands"
	"github.com/josephlewis42/fdsh/core/config"
	"github.com/josephlewis42/fdsh/core/pipeline"
	"github.com/josephlewis42/fdsh/core/proc"
	"github.com/josephlewis42/fdsh/core/sherr"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	exitSyntax     = 2
	exitNoExec     = 126
	exitNotFound   = 127
	exitSetupError = 1
)

// shell runs lines of input against an executor and reports errors the way
// an interactive shell would.
type shell struct {
	exec     *pipeline.Executor
	renderer sherr.Renderer
	stderr   io.Writer
	logger   zerolog.Logger
}

func newShell(cfg *config.Configuration, logger zerolog.Logger, stderr io.Writer) (*shell, error) {
	executor := pipeline.NewExecutor(commands.NewRegistry(), logger)

	env := proc.NewOSEnv()
	for _, entry := range cfg.Environment() {
		key, value, _ := strings.Cut(entry, "=")
		env.Setenv(key, value)
	}
	executor.Env = env

	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	executor.Dir = dir
	executor.Planner.Fs = cfg.RedirectFs()
	executor.Planner.FileMode = cfg.Mode()

	return &shell{
		exec:     executor,
		renderer: sherr.Renderer{Color: cfg.UseColor(isTerminal(stderr))},
		stderr:   stderr,
		logger:   logger,
	}, nil
}

// RunLine parses and executes one line, returning its exit code.
func (s *shell) RunLine(ctx context.Context, line string) int {
	p, err := ParseLine(line, s.exec.Registry)
	if err != nil {
		s.report(err)
		return exitSyntax
	}

	res, err := s.exec.Run(ctx, s.preferExternal(p))
	if err != nil {
		s.report(err)
	}
	if res == nil {
		return setupExitCode(err)
	}
	return res.Status.Code()
}

// preferExternal runs builtins that feed a later stage as the program of the
// same name when one is on PATH. A builtin finishes before the next stage
// starts, so one writing more than a pipe buffer would block forever.
func (s *shell) preferExternal(p pipeline.Pipeline) pipeline.Pipeline {
	if len(p) < 2 {
		return p
	}

	out := append(pipeline.Pipeline(nil), p...)
	path := s.exec.Env.Getenv("PATH")
	for i := range out[:len(out)-1] {
		if out[i].Kind != pipeline.KindBuiltin {
			continue
		}
		if _, err := proc.LookPath(out[i].Program, path, s.exec.Dir); err != nil {
			s.logger.Warn().Str("builtin", out[i].Program).Msg("builtin feeds a pipe, large output will block")
			continue
		}
		out[i].Kind = pipeline.KindExternal
	}
	return out
}

// RunScript executes each line of r in turn. Blank lines and lines starting
// with # are skipped. The code of the last executed line is returned.
func (s *shell) RunScript(ctx context.Context, r io.Reader) (int, error) {
	code := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		code = s.RunLine(ctx, line)
	}
	return code, scanner.Err()
}

func (s *shell) report(err error) {
	if rerr := s.renderer.Render(s.stderr, err); rerr != nil {
		s.logger.Warn().Err(rerr).Msg("couldn't report error")
	}
}

// setupExitCode maps a pipeline that never got to run to an exit code.
func setupExitCode(err error) int {
	switch {
	case errors.Is(err, proc.ErrNotFound):
		return exitNotFound
	case errors.Is(err, fs.ErrPermission):
		return exitNoExec
	default:
		return exitSetupError
	}
}

var (
	runCommand string
	runVerbose bool
)

// runCmd executes pipelines
var runCmd = &cobra.Command{
	Use:   "run [-c LINE] [SCRIPT]",
	Short: "Run a pipeline, a script or lines read from stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, closer, err := newLogger(cmd.ErrOrStderr(), cfg, cfgPath != "")
		if err != nil {
			return err
		}
		defer closer.Close()

		sh, err := newShell(cfg, logger, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		sh.renderer.Verbose = runVerbose

		var code int
		switch {
		case cmd.Flags().Changed("command"):
			code = sh.RunLine(cmd.Context(), runCommand)
		case len(args) == 1:
			script, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer script.Close()
			if code, err = sh.RunScript(cmd.Context(), script); err != nil {
				return err
			}
		default:
			if code, err = sh.RunScript(cmd.Context(), cmd.InOrStdin()); err != nil {
				return err
			}
		}

		if code != 0 {
			return &exitCodeError{code: code}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runCommand, "command", "c", "", "run LINE instead of reading a script")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "show the full cause of errors")
}

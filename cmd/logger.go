package cmd

import (
	"io"
	"time"

	"github.com/josephlewis42/fdsh/core/config"
	"github.com/rs/zerolog"
)

// newLogger writes human readable events to stderr. When a configuration
// directory is in use, events are also appended to its application log as
// JSON; the returned closer releases that log.
func newLogger(stderr io.Writer, cfg *config.Configuration, useConfigDir bool) (zerolog.Logger, io.Closer, error) {
	var out io.Writer = zerolog.ConsoleWriter{
		Out:        stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.UseColor(isTerminal(stderr)),
	}

	var closer io.Closer = nopCloser{}
	if useConfigDir {
		appLog, err := cfg.OpenAppLog()
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		out = zerolog.MultiLevelWriter(out, appLog)
		closer = appLog
	}

	logger := zerolog.New(out).Level(cfg.Level()).With().Timestamp().Str("app", "fdsh").Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

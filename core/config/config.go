package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	AppLogName        = "app.log"
)

const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	configFs         afero.Fs
	configurationDir string

	Path        string   `json:"path"`
	HistoryFile string   `json:"history_file" validate:"required"`
	FileMode    string   `json:"file_mode" validate:"required,filemode"`
	Env         []string `json:"env" validate:"dive,envvar"`
	LogLevel    string   `json:"log_level" validate:"oneof=trace debug info warn error disabled"`
	Color       string   `json:"color" validate:"oneof=always auto never"`
	ReadOnly    bool     `json:"read_only"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	validate.RegisterValidation("filemode", func(fl validator.FieldLevel) bool {
		_, err := parseFileMode(fl.Field().String())
		return err == nil
	})
	validate.RegisterValidation("envvar", func(fl validator.FieldLevel) bool {
		key, _, ok := strings.Cut(fl.Field().String(), "=")
		return ok && key != ""
	})

	return validate.Struct(c)
}

func parseFileMode(s string) (os.FileMode, error) {
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	if mode > 0777 {
		return 0, strconv.ErrRange
	}
	return os.FileMode(mode), nil
}

// Mode returns the permissions for files created by redirects.
func (c *Configuration) Mode() os.FileMode {
	mode, err := parseFileMode(c.FileMode)
	if err != nil {
		return 0666
	}
	return mode
}

// Level returns the minimum level that gets logged.
func (c *Configuration) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}

// UseColor reports whether errors should be colorized on an output that is or
// isn't a terminal.
func (c *Configuration) UseColor(isTerminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal
	}
}

// HistoryPath is the absolute path of the history file.
func (c *Configuration) HistoryPath() string {
	if filepath.IsAbs(c.HistoryFile) {
		return c.HistoryFile
	}
	return filepath.Join(c.configurationDir, c.HistoryFile)
}

// Environment returns the variables the configuration adds to the shell's
// environment, as NAME=VALUE entries.
func (c *Configuration) Environment() []string {
	var out []string
	if c.Path != "" {
		out = append(out, "PATH="+c.Path)
	}
	out = append(out, "HISTFILE="+c.HistoryPath())
	return append(out, c.Env...)
}

// RedirectFs returns the filesystem redirect targets are opened on.
func (c *Configuration) RedirectFs() afero.Fs {
	if c.ReadOnly {
		return afero.NewReadOnlyFs(afero.NewOsFs())
	}
	return afero.NewOsFs()
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewBasePathFs(afero.NewOsFs(), c.configurationDir)
	}
	return c.configFs
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// Default returns the built in configuration rooted at dir.
func Default(dir string) *Configuration {
	out := defaultConfig()
	out.configurationDir = dir
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

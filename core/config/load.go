package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	configFs := afero.NewBasePathFs(afero.NewOsFs(), abs)
	configContents, err := afero.ReadFile(configFs, ConfigurationName)
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.configFs = configFs
	out.configurationDir = abs
	return &out, nil
}

// Initialize writes the default configuration to dir unless one already
// exists, then loads it.
func Initialize(dir string, logger zerolog.Logger) (*Configuration, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	configFs := afero.NewBasePathFs(osFs, dir)
	_, err := configFs.Stat(ConfigurationName)
	switch {
	case err == nil:
		logger.Info().Str("dir", dir).Msg("configuration already exists, not overwriting")
	case errors.Is(err, fs.ErrNotExist):
		if err := afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
		logger.Info().Str("path", filepath.Join(dir, ConfigurationName)).Msg("wrote default configuration")
	default:
		return nil, err
	}

	return Load(dir)
}

// LoadOrDefault loads the configuration from path, or returns the default
// configuration rooted at the user's home directory if path is empty.
func LoadOrDefault(path string) (*Configuration, error) {
	if path != "" {
		return Load(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg := Default(home)
	cfg.HistoryFile = ".fdsh_history"
	return cfg, nil
}

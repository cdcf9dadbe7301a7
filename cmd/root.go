package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/josephlewis42/fdsh/core/config"
	"github.com/spf13/cobra"
)

var cfgPath string

func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configuration, err := config.LoadOrDefault(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		cmd.PrintErrln("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// exitCodeError ends the program with a status without printing anything.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fdsh",
	Short: "File descriptor shell",
	Long:  `Runs pipelines of external programs and builtins wired together with file descriptors.`,

	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	cobra.CheckErr(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory, the built in configuration is used if empty")
}

// Package cli implements the apichangelog command tree.
package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/apichangelog/internal/config"
	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/git"
	"github.com/ariel-frischer/apichangelog/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Command groups shown in help output.
const (
	GroupRecording     = "recording"
	GroupInspection    = "inspection"
	GroupConfiguration = "configuration"
)

// Log formats accepted by --log-format.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

var (
	configPath string
	verbose    bool
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "apichangelog",
	Short: "Track API changes between game client versions",
	Long: `apichangelog records the scripting API surface of every game client version
and reports what each version added and removed.

Each run reads the client version from the console dump, snapshots the
per-category API extracts, diffs them against the previous version and
stores the result in a bounded history.

Source: https://github.com/ariel-frischer/apichangelog`,
	Example: `  # Record the current client version
  apichangelog generate

  # Re-record whenever the console dump is rewritten
  apichangelog watch

  # List recorded versions and show the latest changelog
  apichangelog history
  apichangelog show

  # Compare two recorded versions
  apichangelog compare 6000 6012`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logFormat != LogFormatConsole && logFormat != LogFormatJSON {
			return clierrors.InvalidFlagCombination("--log-format "+logFormat,
				"Valid log formats: console, json")
		}
		if verbose {
			logger := newLogger(cmd.ErrOrStderr()).Sugar()
			git.SetDebugLogger(func(format string, args ...any) {
				logger.Debugf(format, args...)
			})
		}
		return nil
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRecording, Title: "Recording:"},
		&cobra.Group{ID: GroupInspection, Title: "Inspection:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Project config file (default: .apichangelog/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", LogFormatConsole, "Log format: console or json")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	})
}

// Execute runs the root command and prints any error it returns.
func Execute() error {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		reportError(cmd.ErrOrStderr(), err)
	}
	return err
}

// loadConfig loads the effective configuration, honouring --config.
func loadConfig() (*config.Configuration, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, clierrors.ConfigInvalid(err)
	}
	return cfg, nil
}

// newLogger builds the logger selected by --verbose and --log-format.
func newLogger(w io.Writer) *zap.Logger {
	if logFormat == LogFormatJSON {
		return logging.NewJSON(verbose, w)
	}
	return logging.New(verbose, w)
}

// argsError converts a cobra positional argument validator into one that
// returns an Argument CLIError.
func argsError(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine(),
				fmt.Sprintf("See 'apichangelog %s --help'", cmd.Name()))
		}
		return nil
	}
}

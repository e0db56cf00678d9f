package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/apichangelog/internal/config"
	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage apichangelog configuration",
	Long: `Manage apichangelog configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (APICHANGELOG_*)
  2. Project config (.apichangelog/config.yml or .apichangelog/config.json)
  3. User config (~/.config/apichangelog/config.yml)
  4. Built-in defaults`,
	Example: `  # Show the effective configuration
  apichangelog config show

  # List every configuration key
  apichangelog config keys

  # Write a commented project config
  apichangelog config init`,
}

var configShowJSON bool

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  argsError(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runConfigShow(cmd.OutOrStdout(), cfg, configShowJSON)
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the known configuration keys",
	Args:  argsError(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigKeys(cmd.OutOrStdout())
	},
}

var (
	configInitForce bool
	configInitUser  bool
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented configuration file",
	Long: `Write a commented configuration file with every default.

The project config (.apichangelog/config.yml) is written unless --user is set.
An existing file is kept unless --force is set.`,
	Args: argsError(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ProjectConfigPath()
		if configInitUser {
			userPath, err := config.UserConfigPath()
			if err != nil {
				return fmt.Errorf("resolving user config path: %w", err)
			}
			path = userPath
		}
		return runConfigInit(cmd.OutOrStdout(), path, configInitForce)
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configKeysCmd, configInitCmd)

	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "Output in JSON format")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configInitCmd.Flags().BoolVar(&configInitUser, "user", false, "Write the user config instead of the project config")
}

// configView is the printable form of a Configuration.
type configView struct {
	DumpPath      string             `json:"dump_path" yaml:"dump_path"`
	FilesDir      string             `json:"files_dir" yaml:"files_dir"`
	StorePath     string             `json:"store_path" yaml:"store_path"`
	MaxVersions   int                `json:"max_versions" yaml:"max_versions"`
	Lock          bool               `json:"lock" yaml:"lock"`
	RecordCommit  bool               `json:"record_commit" yaml:"record_commit"`
	Notify        bool               `json:"notify" yaml:"notify"`
	WatchDebounce string             `json:"watch_debounce" yaml:"watch_debounce"`
	Categories    []surface.Category `json:"categories" yaml:"categories"`
}

func runConfigShow(out io.Writer, cfg *config.Configuration, asJSON bool) error {
	sources := make([]string, len(cfg.Sources))
	for i, s := range cfg.Sources {
		sources[i] = string(s)
	}
	fmt.Fprintf(out, "# Configuration Sources: %s\n", strings.Join(sources, ", "))

	view := configView{
		DumpPath:      cfg.DumpPath,
		FilesDir:      cfg.FilesDir,
		StorePath:     cfg.StorePath,
		MaxVersions:   cfg.MaxVersions,
		Lock:          cfg.Lock,
		RecordCommit:  cfg.RecordCommit,
		Notify:        cfg.Notify,
		WatchDebounce: cfg.WatchDebounce.String(),
		Categories:    cfg.Categories,
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return enc.Close()
}

func runConfigKeys(out io.Writer) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, key := range config.SortedKeys() {
		fmt.Fprintf(out, "%s  %s  (default: %v)\n", cyan(fmt.Sprintf("%-16s", key.Path)), fmt.Sprintf("%-8s", key.Type), key.Default)
		fmt.Fprintf(out, "  %s\n", dim(key.Description))
	}
	fmt.Fprintf(out, "\nOverride any key with an environment variable, e.g. %sMAX_VERSIONS=10\n", config.EnvPrefix)
	return nil
}

func runConfigInit(out io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return clierrors.NewArgumentError(
			fmt.Sprintf("config file already exists: %s", path),
			"Use --force to overwrite it",
		)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return clierrors.FileNotWritable(path, err)
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return clierrors.FileNotWritable(path, err)
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(out, "%s Wrote %s\n", green("✓"), path)
	return nil
}

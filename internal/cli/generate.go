package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
	"github.com/ariel-frischer/apichangelog/internal/config"
	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/progress"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runFlags are the overrides shared by generate and watch.
type runFlags struct {
	DumpPath    string
	FilesDir    string
	StorePath   string
	MaxVersions int
	NoLock      bool
	NoCommit    bool
	Strict      bool
	Plain       bool
}

var generateFlags runFlags

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Record the current client version and its API changes (gen)",
	Long: `Record the current client version and its API changes.

The client version is read from the console dump. Every tracked category is
normalized into a snapshot and diffed against the previous version. The
version record, snapshot and change set are then saved to the history store,
replacing any earlier record of the same version.

Missing or malformed category files are reported but do not fail the run.`,
	Example: `  # Record using the configured paths
  apichangelog generate

  # Use a different dump and store
  apichangelog gen --dump dumper/dump --store files/changelog.json

  # Fail in CI when any category could not be read
  apichangelog generate --strict`,
	Args: argsError(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyRunFlags(cmd, cfg, generateFlags); err != nil {
			return err
		}
		return runGenerate(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, newLogger(cmd.ErrOrStderr()), generateFlags)
	},
}

func init() {
	generateCmd.GroupID = GroupRecording
	rootCmd.AddCommand(generateCmd)
	addRunFlags(generateCmd, &generateFlags)
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.DumpPath, "dump", "", "Console dump holding the client version")
	cmd.Flags().StringVar(&f.FilesDir, "files-dir", "", "Directory holding the category extracts")
	cmd.Flags().StringVar(&f.StorePath, "store", "", "History store file")
	cmd.Flags().IntVar(&f.MaxVersions, "max-versions", 0, "Maximum number of versions to keep")
	cmd.Flags().BoolVar(&f.NoLock, "no-lock", false, "Do not lock the history store")
	cmd.Flags().BoolVar(&f.NoCommit, "no-commit", false, "Do not record the source commit")
	cmd.Flags().BoolVar(&f.Strict, "strict", false, "Exit non-zero when the run reports issues")
	cmd.Flags().BoolVar(&f.Plain, "plain", false, "Plain text output (no colors/icons)")
}

// applyRunFlags overrides cfg with the flags set on cmd and validates the
// result.
func applyRunFlags(cmd *cobra.Command, cfg *config.Configuration, f runFlags) error {
	flags := cmd.Flags()
	if flags.Changed("dump") {
		cfg.DumpPath = f.DumpPath
	}
	if flags.Changed("files-dir") {
		cfg.FilesDir = f.FilesDir
	}
	if flags.Changed("store") {
		cfg.StorePath = f.StorePath
	}
	if flags.Changed("max-versions") {
		cfg.MaxVersions = f.MaxVersions
	}
	if f.NoLock {
		cfg.Lock = false
	}
	if f.NoCommit {
		cfg.RecordCommit = false
	}
	if err := cfg.Validate(config.SourceCommandLine); err != nil {
		return clierrors.InvalidOverride(err)
	}
	return nil
}

func writerOptions(cfg *config.Configuration, logger *zap.Logger) changelog.Options {
	return changelog.Options{
		DumpPath:     cfg.DumpPath,
		FilesDir:     cfg.FilesDir,
		Categories:   cfg.Categories,
		StorePath:    cfg.StorePath,
		MaxVersions:  cfg.MaxVersions,
		Lock:         cfg.Lock,
		RecordCommit: cfg.RecordCommit,
		Logger:       logger,
	}
}

// runGenerate performs one run and prints its summary to out. Progress goes
// to errOut.
func runGenerate(out, errOut io.Writer, cfg *config.Configuration, logger *zap.Logger, f runFlags) error {
	sp := progress.NewSpinner(progress.DetectTerminal(os.Stderr), errOut)
	sp.Start("Generating changelog")

	opts := writerOptions(cfg, logger)
	opts.Progress = sp.Stage
	summary, err := changelog.NewWriter(opts).Run()
	if err != nil {
		sp.Stop(false, "Changelog generation failed")
		return err
	}
	sp.Stop(true, fmt.Sprintf("Recorded version %s", summary.Release.Version))

	if err := changelog.FormatSummary(summary, out, changelog.FormatOptions{Plain: f.Plain}); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if f.Strict && len(summary.Issues) > 0 {
		fmt.Fprintf(errOut, "%d issue(s) reported; failing because of --strict\n", len(summary.Issues))
		return NewExitError(ExitIssuesReported)
	}
	return nil
}

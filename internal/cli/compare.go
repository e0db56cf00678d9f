package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/spf13/cobra"
)

// compareOptions holds the compare command flags.
type compareOptions struct {
	Unified bool
	Plain   bool
	Store   string
}

var compareFlags compareOptions

var compareCmd = &cobra.Command{
	Use:   "compare <from> <to>",
	Short: "Diff the stored snapshots of two recorded versions",
	Long: `Diff the stored snapshots of any two recorded versions.

The result lists what <to> added and removed relative to <from>, as if <from>
had been its predecessor. With --unified the identity keys of each differing
category are printed as a unified diff.`,
	Example: `  # Everything that changed across several releases
  apichangelog compare 6000 6012

  # Unified diff of identity keys
  apichangelog compare 6000 6012 --unified`,
	Args: argsError(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts := compareFlags
		if !cmd.Flags().Changed("store") {
			opts.Store = cfg.StorePath
		}
		return runCompare(cmd.OutOrStdout(), args[0], args[1], cfg.Categories, opts)
	},
}

func init() {
	compareCmd.GroupID = GroupInspection
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().BoolVarP(&compareFlags.Unified, "unified", "u", false, "Print a unified diff of identity keys")
	compareCmd.Flags().BoolVar(&compareFlags.Plain, "plain", false, "Plain text output (no colors/icons)")
	compareCmd.Flags().StringVar(&compareFlags.Store, "store", "", "History store file")
}

// runCompare writes the difference between the snapshots of from and to.
func runCompare(out io.Writer, from, to string, categories []surface.Category, opts compareOptions) error {
	store, err := history.Load(opts.Store)
	if err != nil {
		return fmt.Errorf("loading history store: %w", err)
	}
	for _, id := range []string{from, to} {
		if _, ok := store.Get(id); !ok {
			return clierrors.VersionNotRecorded(id, recentVersions(store), changelog.ErrVersionNotRecorded)
		}
	}

	if opts.Unified {
		err = changelog.WriteUnified(store, from, to, categories, out)
	} else {
		err = writeComparison(store, from, to, categories, out, opts.Plain)
	}
	if errors.Is(err, changelog.ErrVersionNotRecorded) {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "history store is missing a snapshot",
			"Re-record the version with: apichangelog generate")
	}
	return err
}

func writeComparison(store *history.Store, from, to string, categories []surface.Category, w io.Writer, plain bool) error {
	changes, err := changelog.Compare(store, from, to)
	if err != nil {
		return err
	}
	entry := changelog.Entry{
		Version: fmt.Sprintf("%s -> %s", from, to),
		Changes: changes,
	}
	return changelog.FormatEntry(entry, categories, w, changelog.FormatOptions{Plain: plain})
}

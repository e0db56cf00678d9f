package cli

import (
	"fmt"
	"io"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyPlain bool
	historyStore string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded client versions",
	Long: `List the recorded client versions, newest first, with their release date,
added and removed counts, and the source commit when one was recorded.`,
	Example: `  # List every recorded version
  apichangelog history

  # Only the 5 most recent versions
  apichangelog history --limit 5`,
	Args: argsError(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		storePath := cfg.StorePath
		if cmd.Flags().Changed("store") {
			storePath = historyStore
		}
		return runHistory(cmd.OutOrStdout(), storePath, historyLimit, changelog.FormatOptions{Plain: historyPlain})
	},
}

func init() {
	historyCmd.GroupID = GroupInspection
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Limit to the N most recent versions")
	historyCmd.Flags().BoolVar(&historyPlain, "plain", false, "Plain text output (no colors/icons)")
	historyCmd.Flags().StringVar(&historyStore, "store", "", "History store file")
}

// runHistory lists the version records of the store at storePath.
func runHistory(out io.Writer, storePath string, limit int, opts changelog.FormatOptions) error {
	if limit < 0 {
		return clierrors.NewArgumentError(fmt.Sprintf("limit must be positive, got %d", limit))
	}

	store, err := history.Load(storePath)
	if err != nil {
		return fmt.Errorf("loading history store: %w", err)
	}

	records := store.Versions
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	if err := changelog.FormatHistory(records, out, opts); err != nil {
		return fmt.Errorf("formatting history: %w", err)
	}
	if len(records) < len(store.Versions) {
		fmt.Fprintf(out, "\n(%d of %d versions shown. Use --limit %d to see all)\n",
			len(records), len(store.Versions), len(store.Versions))
	}
	return nil
}

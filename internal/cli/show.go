package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by show.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

var validFormats = []string{FormatText, FormatMarkdown, FormatJSON, FormatYAML}

// showOptions holds the show command flags.
type showOptions struct {
	Format string
	Output string
	Plain  bool
	Store  string
}

var showFlags showOptions

var showCmd = &cobra.Command{
	Use:   "show [version]",
	Short: "Show the changelog of a recorded version",
	Long: `Show the items a recorded version added and removed, grouped by category.

Without a version argument the latest recorded version is shown. The markdown
format produces a changelog section suitable for publishing; json and yaml
emit the raw change set.`,
	Example: `  # Latest version in the terminal
  apichangelog show

  # A specific version as markdown, written to a file
  apichangelog show 6012 --format markdown --output CHANGELOG-6012.md

  # Machine-readable change set
  apichangelog show 6012 --format json`,
	Args: argsError(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts := showFlags
		if !cmd.Flags().Changed("store") {
			opts.Store = cfg.StorePath
		}
		version := ""
		if len(args) == 1 {
			version = args[0]
		}
		return runShow(cmd.OutOrStdout(), version, cfg.Categories, opts)
	},
}

func init() {
	showCmd.GroupID = GroupInspection
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showFlags.Format, "format", "f", FormatText, "Output format: text, markdown, json or yaml")
	showCmd.Flags().StringVarP(&showFlags.Output, "output", "o", "", "Write to file instead of stdout")
	showCmd.Flags().BoolVar(&showFlags.Plain, "plain", false, "Plain text output (no colors/icons)")
	showCmd.Flags().StringVar(&showFlags.Store, "store", "", "History store file")
}

// recentVersions lists up to five recorded identifiers, newest first, for
// error details.
func recentVersions(store *history.Store) []string {
	ids := store.ListVersionIDs()
	if len(ids) > 5 {
		ids = append(ids[:5:5], "...")
	}
	return ids
}

// runShow prints the changelog of version, or of the latest version when
// version is empty.
func runShow(out io.Writer, version string, categories []surface.Category, opts showOptions) error {
	if !isValidFormat(opts.Format) {
		return clierrors.InvalidFormat(opts.Format, validFormats)
	}

	store, err := history.Load(opts.Store)
	if err != nil {
		return fmt.Errorf("loading history store: %w", err)
	}

	entry, err := changelog.EntryFor(store, version)
	if err != nil {
		if errors.Is(err, changelog.ErrVersionNotRecorded) {
			return clierrors.VersionNotRecorded(version, recentVersions(store), err)
		}
		return err
	}

	var buf bytes.Buffer
	plain := opts.Plain || opts.Output != ""
	if err := encodeEntry(&buf, entry, categories, opts.Format, plain); err != nil {
		return err
	}

	if opts.Output == "" {
		_, err := out.Write(buf.Bytes())
		return err
	}
	if err := writeOutputFile(opts.Output, buf.Bytes()); err != nil {
		return clierrors.FileNotWritable(opts.Output, err)
	}
	fmt.Fprintf(out, "Wrote %s changelog to %s\n", entry.Version, opts.Output)
	return nil
}

func encodeEntry(w io.Writer, entry changelog.Entry, categories []surface.Category, format string, plain bool) error {
	switch format {
	case FormatMarkdown:
		return changelog.RenderMarkdown(entry, categories, w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return changelog.FormatEntry(entry, categories, w, changelog.FormatOptions{Plain: plain})
	}
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

func writeOutputFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

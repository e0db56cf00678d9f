package changelog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ariel-frischer/apichangelog/internal/diff"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/surface"
)

// ErrVersionNotRecorded is returned when a requested version is not in the store.
var ErrVersionNotRecorded = errors.New("version not recorded")

// Entry is the changelog of one version.
type Entry struct {
	Version      string         `json:"version" yaml:"version"`
	Date         string         `json:"date" yaml:"date"`
	Time         string         `json:"time" yaml:"time"`
	SourceCommit string         `json:"sourceCommit,omitempty" yaml:"sourceCommit,omitempty"`
	Changes      diff.ChangeSet `json:"changes" yaml:"changes"`
}

// EntryFor returns the changelog entry of version id. An empty id selects the
// latest recorded version.
func EntryFor(store *history.Store, id string) (Entry, error) {
	var (
		record history.VersionRecord
		ok     bool
	)
	if id == "" {
		record, ok = store.Latest()
		if !ok {
			return Entry{}, fmt.Errorf("history is empty: %w", ErrVersionNotRecorded)
		}
	} else {
		record, ok = store.Get(id)
		if !ok {
			return Entry{}, fmt.Errorf("%s: %w", id, ErrVersionNotRecorded)
		}
	}

	changes := store.Changes[record.VersionID]
	if changes == nil {
		changes = diff.ChangeSet{}
	}
	return Entry{
		Version:      record.VersionID,
		Date:         record.Date,
		Time:         record.Time,
		SourceCommit: record.SourceCommit,
		Changes:      changes,
	}, nil
}

// RenderMarkdown writes the entry as a markdown section. Categories appear in
// the order of categories; items keep their recorded order.
//
// The function is idempotent - given the same input, it produces identical output.
func RenderMarkdown(e Entry, categories []surface.Category, w io.Writer) error {
	if _, err := fmt.Fprintln(w, formatEntryHeader(e)); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	added, removed := e.Changes.Counts()
	if added == 0 && removed == 0 {
		_, err := fmt.Fprintln(w, "\nNo API changes.")
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%d added, %d removed\n", added, removed); err != nil {
		return err
	}

	for _, key := range CategoryOrder(e.Changes, categories) {
		if err := renderCategory(key, e.Changes[key], w); err != nil {
			return fmt.Errorf("rendering category %s: %w", key, err)
		}
	}
	return nil
}

func formatEntryHeader(e Entry) string {
	when := strings.TrimSpace(e.Date + " " + e.Time)
	if when == "" {
		return "## " + e.Version
	}
	return fmt.Sprintf("## %s - %s", e.Version, when)
}

func renderCategory(key string, change diff.CategoryChange, w io.Writer) error {
	name := change.Name
	if name == "" {
		name = key
	}
	if _, err := fmt.Fprintf(w, "\n### %s\n", name); err != nil {
		return err
	}

	sections := []struct {
		title string
		items []surface.Item
	}{
		{"Added", change.Added},
		{"Removed", change.Removed},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n#### %s\n\n", s.title); err != nil {
			return err
		}
		for _, item := range s.items {
			if _, err := fmt.Fprintf(w, "- `%s` (%s)\n", item.Label(), item.Kind); err != nil {
				return err
			}
		}
	}
	return nil
}

package changelog

import (
	"fmt"
	"io"
	"sort"

	"github.com/ariel-frischer/apichangelog/internal/diff"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/snapshot"
	"github.com/ariel-frischer/apichangelog/internal/surface"
	difflib "github.com/pmezard/go-difflib/difflib"
)

// unifiedContext is the number of context lines in unified hunks.
const unifiedContext = 3

// Compare diffs the stored snapshots of two versions. The result is what the
// change set of to would be had from been its predecessor.
func Compare(store *history.Store, from, to string) (diff.ChangeSet, error) {
	prev, curr, err := snapshotPair(store, from, to)
	if err != nil {
		return nil, err
	}
	return diff.Compute(prev, curr), nil
}

// WriteUnified writes a unified diff of the identity keys of every category
// that differs between the stored snapshots of from and to.
func WriteUnified(store *history.Store, from, to string, categories []surface.Category, w io.Writer) error {
	prev, curr, err := snapshotPair(store, from, to)
	if err != nil {
		return err
	}

	for _, key := range snapshotOrder(categories, prev, curr) {
		u := difflib.UnifiedDiff{
			A:        keyLines(prev, key),
			B:        keyLines(curr, key),
			FromFile: from + "/" + key,
			ToFile:   to + "/" + key,
			Context:  unifiedContext,
		}
		s, err := difflib.GetUnifiedDiffString(u)
		if err != nil {
			return fmt.Errorf("diffing category %s: %w", key, err)
		}
		if s == "" {
			continue
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func snapshotPair(store *history.Store, from, to string) (snapshot.Snapshot, snapshot.Snapshot, error) {
	prev, ok := store.Snapshots[from]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", from, ErrVersionNotRecorded)
	}
	curr, ok := store.Snapshots[to]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", to, ErrVersionNotRecorded)
	}
	return prev, curr, nil
}

// snapshotOrder returns every category key present in any of snaps, tracked
// categories first.
func snapshotOrder(categories []surface.Category, snaps ...snapshot.Snapshot) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, cat := range categories {
		for _, s := range snaps {
			if _, ok := s[cat.Key]; ok && !seen[cat.Key] {
				keys = append(keys, cat.Key)
				seen[cat.Key] = true
			}
		}
	}

	var rest []string
	for _, s := range snaps {
		for key := range s {
			if !seen[key] {
				rest = append(rest, key)
				seen[key] = true
			}
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func keyLines(s snapshot.Snapshot, category string) []string {
	keys := s.Keys(category)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "\n"
	}
	return lines
}

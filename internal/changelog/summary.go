package changelog

import (
	"sort"

	"github.com/ariel-frischer/apichangelog/internal/diff"
	"github.com/ariel-frischer/apichangelog/internal/release"
	"github.com/ariel-frischer/apichangelog/internal/surface"
)

// Summary reports the outcome of one Writer run.
type Summary struct {
	RunID string
	// Release is the resolved client version.
	Release release.Release
	// Predecessor is the version the snapshot was compared against, or empty
	// when there was none.
	Predecessor string
	// Replaced is set when the version was already recorded.
	Replaced bool
	// Evicted lists versions dropped by the retention cap, oldest first.
	Evicted []string
	// Categories holds per-category counts for every changed category.
	Categories []CategorySummary
	Added      int
	Removed    int
	// Items is the total item count of the new snapshot.
	Items int
	// Issues are the non-fatal problems met during the run.
	Issues    []error
	StorePath string
}

// CategorySummary holds the change counts of one category.
type CategorySummary struct {
	Key     string
	Name    string
	Added   int
	Removed int
}

// HasChanges reports whether the run recorded any added or removed item.
func (s *Summary) HasChanges() bool {
	return s.Added > 0 || s.Removed > 0
}

// summarizeCategories returns per-category counts in tracked category order.
func summarizeCategories(changes diff.ChangeSet, categories []surface.Category) []CategorySummary {
	keys := CategoryOrder(changes, categories)
	out := make([]CategorySummary, 0, len(keys))
	for _, key := range keys {
		change := changes[key]
		out = append(out, CategorySummary{
			Key:     key,
			Name:    change.Name,
			Added:   len(change.Added),
			Removed: len(change.Removed),
		})
	}
	return out
}

// CategoryOrder returns the keys of changes ordered as categories lists them.
// Keys that are not tracked any more (a category dropped from configuration)
// follow in sorted order.
func CategoryOrder(changes diff.ChangeSet, categories []surface.Category) []string {
	keys := make([]string, 0, len(changes))
	seen := make(map[string]bool, len(changes))
	for _, cat := range categories {
		if _, ok := changes[cat.Key]; ok && !seen[cat.Key] {
			keys = append(keys, cat.Key)
			seen[cat.Key] = true
		}
	}

	var rest []string
	for key := range changes {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

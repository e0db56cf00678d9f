// Package diff computes the added and removed items between two snapshots.
//
// Comparison is by identity key only. An item whose display fields changed
// but whose key did not is neither added nor removed.
package diff

import (
	"sort"

	"github.com/ariel-frischer/apichangelog/internal/snapshot"
	"github.com/ariel-frischer/apichangelog/internal/surface"
)

// CategoryChange lists the items added to and removed from one category.
type CategoryChange struct {
	Name    string         `json:"name" yaml:"name"`
	Added   []surface.Item `json:"added" yaml:"added"`
	Removed []surface.Item `json:"removed" yaml:"removed"`
}

// ChangeSet maps category keys to their changes. Categories without changes
// are absent.
type ChangeSet map[string]CategoryChange

// Compute compares curr against its predecessor prev.
//
// A category missing from prev contributes only additions. A category missing
// from curr contributes every one of its prev items as removals. Item order
// follows the snapshot each item came from.
func Compute(prev, curr snapshot.Snapshot) ChangeSet {
	changes := make(ChangeSet)

	for key, currCat := range curr {
		prevCat, ok := prev[key]
		if !ok {
			if len(currCat.Items) > 0 {
				changes[key] = CategoryChange{
					Name:    currCat.Name,
					Added:   cloneItems(currCat.Items),
					Removed: []surface.Item{},
				}
			}
			continue
		}

		added := missingFrom(currCat.Items, keySet(prevCat.Items))
		removed := missingFrom(prevCat.Items, keySet(currCat.Items))
		if len(added) > 0 || len(removed) > 0 {
			changes[key] = CategoryChange{
				Name:    currCat.Name,
				Added:   added,
				Removed: removed,
			}
		}
	}

	for key, prevCat := range prev {
		if _, ok := curr[key]; ok || len(prevCat.Items) == 0 {
			continue
		}
		changes[key] = CategoryChange{
			Name:    prevCat.Name,
			Added:   []surface.Item{},
			Removed: cloneItems(prevCat.Items),
		}
	}

	return changes
}

// Counts returns the total number of added and removed items.
func (c ChangeSet) Counts() (added, removed int) {
	for _, change := range c {
		added += len(change.Added)
		removed += len(change.Removed)
	}
	return added, removed
}

// Categories returns the category keys in the change set, sorted.
func (c ChangeSet) Categories() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsEmpty reports whether the change set records no changes.
func (c ChangeSet) IsEmpty() bool {
	return len(c) == 0
}

func keySet(items []surface.Item) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item.Key()] = struct{}{}
	}
	return set
}

// missingFrom returns the items whose key is not in set, in their original order.
func missingFrom(items []surface.Item, set map[string]struct{}) []surface.Item {
	out := make([]surface.Item, 0)
	for _, item := range items {
		if _, ok := set[item.Key()]; !ok {
			out = append(out, item)
		}
	}
	return out
}

func cloneItems(items []surface.Item) []surface.Item {
	out := make([]surface.Item, len(items))
	copy(out, items)
	return out
}

// Package snapshot builds the normalized state of every tracked category for
// one client version.
package snapshot

import (
	"github.com/ariel-frischer/apichangelog/internal/surface"
)

// Category is the normalized content of one tracked category.
type Category struct {
	Name   string               `json:"name" yaml:"name"`
	Items  []surface.Item       `json:"items" yaml:"items"`
	Totals map[surface.Kind]int `json:"totals,omitempty" yaml:"totals,omitempty"`
}

// Snapshot maps category keys to their normalized content.
// A Snapshot is never modified after Build returns it.
type Snapshot map[string]Category

// Keys returns the identity keys of every item in a category, or nil if the
// category is absent.
func (s Snapshot) Keys(category string) []string {
	c, ok := s[category]
	if !ok {
		return nil
	}
	return surface.Keys(c.Items)
}

// ItemCount returns the number of items across all categories.
func (s Snapshot) ItemCount() int {
	n := 0
	for _, c := range s {
		n += len(c.Items)
	}
	return n
}

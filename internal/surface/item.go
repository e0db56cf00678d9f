// Package surface defines the diffable units of a game's scripting API surface
// and the normalizers that turn raw per-category JSON extracts into them.
//
// Every raw document shape maps to exactly one Shape tag. Normalize dispatches
// on that tag rather than sniffing the document, so a document that does not
// match its declared shape is reported as malformed instead of being guessed at.
package surface

import "strings"

// Kind identifies what an Item represents.
type Kind string

const (
	KindClass      Kind = "class"
	KindMethod     Kind = "method"
	KindFunction   Kind = "function"
	KindConstant   Kind = "constant"
	KindEnum       Kind = "enum"
	KindEnumMember Kind = "enum_member"
	KindModifier   Kind = "modifier"
	KindEvent      Kind = "event"
	KindConvar     Kind = "convar"
	KindType       Kind = "type"
)

// Item is one normalized, diffable unit of a category.
//
// Parent holds the owning class of a method, the owning enum of an enum member,
// or the bucket of a modifier. Tag holds the declared kind of a type item.
// Signature and Value are for display only and never take part in identity.
type Item struct {
	Kind      Kind   `json:"kind" yaml:"kind"`
	Name      string `json:"name" yaml:"name"`
	Parent    string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Key returns the identity key of the item: kind, tag, parent and name joined
// with colons, skipping empty qualifiers. Two items with the same name but a
// different kind or parent never share a key.
func (i Item) Key() string {
	parts := make([]string, 0, 4)
	parts = append(parts, string(i.Kind))
	if i.Tag != "" {
		parts = append(parts, i.Tag)
	}
	if i.Parent != "" {
		parts = append(parts, i.Parent)
	}
	parts = append(parts, i.Name)
	return strings.Join(parts, ":")
}

// Label is a short human-readable rendering used in changelog output,
// e.g. "CDOTA_BaseNPC.GetHealth()" or "DOTA_UNIT_ORDER.MOVE_TO_POSITION".
func (i Item) Label() string {
	name := i.Name
	if i.Signature != "" {
		name = i.Signature
	}
	if i.Parent == "" {
		return name
	}
	return i.Parent + "." + name
}

// Keys returns the identity keys of items in order.
func Keys(items []Item) []string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = item.Key()
	}
	return keys
}

// CountByKind tallies items per kind.
func CountByKind(items []Item) map[Kind]int {
	if len(items) == 0 {
		return nil
	}
	counts := make(map[Kind]int)
	for _, item := range items {
		counts[item.Kind]++
	}
	return counts
}

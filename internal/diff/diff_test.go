package diff

import (
	"testing"

	"github.com/ariel-frischer/apichangelog/internal/snapshot"
	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fn(name string) surface.Item {
	return surface.Item{Kind: surface.KindFunction, Name: name, Signature: name + "()"}
}

func mod(bucket, name string) surface.Item {
	return surface.Item{Kind: surface.KindModifier, Name: name, Parent: bucket}
}

func cat(name string, items ...surface.Item) snapshot.Category {
	if items == nil {
		items = []surface.Item{}
	}
	return snapshot.Category{Name: name, Items: items}
}

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		prev snapshot.Snapshot
		curr snapshot.Snapshot
		want ChangeSet
	}{
		"added and removed functions": {
			prev: snapshot.Snapshot{"functions": cat("Functions", fn("Foo"), fn("Bar"))},
			curr: snapshot.Snapshot{"functions": cat("Functions", fn("Foo"), fn("Baz"))},
			want: ChangeSet{
				"functions": {
					Name:    "Functions",
					Added:   []surface.Item{fn("Baz")},
					Removed: []surface.Item{fn("Bar")},
				},
			},
		},
		"new category is added only": {
			prev: snapshot.Snapshot{"functions": cat("Functions", fn("Foo"))},
			curr: snapshot.Snapshot{
				"functions": cat("Functions", fn("Foo")),
				"modifiers": cat("Modifiers", mod("items", "a"), mod("items", "b"), mod("heroes", "c")),
			},
			want: ChangeSet{
				"modifiers": {
					Name:    "Modifiers",
					Added:   []surface.Item{mod("items", "a"), mod("items", "b"), mod("heroes", "c")},
					Removed: []surface.Item{},
				},
			},
		},
		"disappeared category is removed only": {
			prev: snapshot.Snapshot{
				"functions": cat("Functions", fn("Foo")),
				"convars":   cat("Console Variables", surface.Item{Kind: surface.KindConvar, Name: "sv_cheats"}),
			},
			curr: snapshot.Snapshot{"functions": cat("Functions", fn("Foo"))},
			want: ChangeSet{
				"convars": {
					Name:    "Console Variables",
					Added:   []surface.Item{},
					Removed: []surface.Item{{Kind: surface.KindConvar, Name: "sv_cheats"}},
				},
			},
		},
		"disappeared empty category is ignored": {
			prev: snapshot.Snapshot{"convars": cat("Console Variables")},
			curr: snapshot.Snapshot{},
			want: ChangeSet{},
		},
		"new empty category is ignored": {
			prev: snapshot.Snapshot{},
			curr: snapshot.Snapshot{"convars": cat("Console Variables")},
			want: ChangeSet{},
		},
		"category emptied by malformed source is a removal": {
			prev: snapshot.Snapshot{"functions": cat("Functions", fn("Foo"), fn("Bar"))},
			curr: snapshot.Snapshot{"functions": cat("Functions")},
			want: ChangeSet{
				"functions": {
					Name:    "Functions",
					Added:   []surface.Item{},
					Removed: []surface.Item{fn("Foo"), fn("Bar")},
				},
			},
		},
		"nil predecessor makes everything added": {
			prev: nil,
			curr: snapshot.Snapshot{"functions": cat("Functions", fn("Foo"))},
			want: ChangeSet{
				"functions": {Name: "Functions", Added: []surface.Item{fn("Foo")}, Removed: []surface.Item{}},
			},
		},
		"unchanged snapshot yields empty change set": {
			prev: snapshot.Snapshot{"functions": cat("Functions", fn("Foo"))},
			curr: snapshot.Snapshot{"functions": cat("Functions", fn("Foo"))},
			want: ChangeSet{},
		},
		"display-only change is not detected": {
			prev: snapshot.Snapshot{"functions": cat("Functions", surface.Item{Kind: surface.KindFunction, Name: "Foo", Signature: "Foo()"})},
			curr: snapshot.Snapshot{"functions": cat("Functions", surface.Item{Kind: surface.KindFunction, Name: "Foo", Signature: "Foo(a, b)"})},
			want: ChangeSet{},
		},
		"same name in different parents are distinct": {
			prev: snapshot.Snapshot{"modifiers": cat("Modifiers", mod("items", "x"))},
			curr: snapshot.Snapshot{"modifiers": cat("Modifiers", mod("heroes", "x"))},
			want: ChangeSet{
				"modifiers": {
					Name:    "Modifiers",
					Added:   []surface.Item{mod("heroes", "x")},
					Removed: []surface.Item{mod("items", "x")},
				},
			},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Compute(tc.prev, tc.curr))
		})
	}
}

func TestCompute_PreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	prev := snapshot.Snapshot{"functions": cat("Functions", fn("Keep"), fn("Zed"), fn("Alpha"), fn("Mid"))}
	curr := snapshot.Snapshot{"functions": cat("Functions", fn("Zulu"), fn("Keep"), fn("Bravo"), fn("Able"))}

	changes := Compute(prev, curr)
	require.Contains(t, changes, "functions")
	assert.Equal(t, []surface.Item{fn("Zulu"), fn("Bravo"), fn("Able")}, changes["functions"].Added)
	assert.Equal(t, []surface.Item{fn("Zed"), fn("Alpha"), fn("Mid")}, changes["functions"].Removed)
}

func TestCompute_Symmetry(t *testing.T) {
	t.Parallel()

	prev := snapshot.Snapshot{
		"a": cat("A", fn("one"), fn("two"), fn("three")),
		"b": cat("B", mod("x", "m1"), mod("y", "m2")),
	}
	curr := snapshot.Snapshot{
		"a": cat("A", fn("two"), fn("four")),
		"b": cat("B", mod("x", "m1"), mod("y", "m3")),
	}

	changes := Compute(prev, curr)
	for key, change := range changes {
		prevKeys := keySet(prev[key].Items)
		currKeys := keySet(curr[key].Items)
		for _, item := range change.Added {
			_, inPrev := prevKeys[item.Key()]
			assert.False(t, inPrev, "added item %s present in predecessor", item.Key())
		}
		for _, item := range change.Removed {
			_, inCurr := currKeys[item.Key()]
			assert.False(t, inCurr, "removed item %s present in current", item.Key())
		}
	}

	// Reversing the inputs swaps added and removed.
	reversed := Compute(curr, prev)
	for key, change := range changes {
		assert.Equal(t, change.Added, reversed[key].Removed)
		assert.Equal(t, change.Removed, reversed[key].Added)
	}
}

func TestCompute_DoesNotAliasSnapshot(t *testing.T) {
	t.Parallel()

	curr := snapshot.Snapshot{"functions": cat("Functions", fn("Foo"))}
	changes := Compute(snapshot.Snapshot{}, curr)

	changes["functions"].Added[0].Name = "Mutated"
	assert.Equal(t, "Foo", curr["functions"].Items[0].Name)
}

func TestChangeSet_CountsAndCategories(t *testing.T) {
	t.Parallel()

	changes := ChangeSet{
		"b": {Added: []surface.Item{fn("x"), fn("y")}, Removed: []surface.Item{}},
		"a": {Added: []surface.Item{}, Removed: []surface.Item{fn("z")}},
	}

	added, removed := changes.Counts()
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"a", "b"}, changes.Categories())
	assert.False(t, changes.IsEmpty())
	assert.True(t, ChangeSet{}.IsEmpty())
}

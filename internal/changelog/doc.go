// Package changelog drives one changelog generation run and presents its
// results.
//
// This package implements:
//   - the Writer, which resolves the client version from a dump, snapshots the
//     tracked categories, diffs them against the predecessor version and
//     persists the result in the history store
//   - Markdown rendering of a version's change set
//   - Terminal formatting of run summaries, history listings and change sets
//   - On-the-fly comparison of any two stored versions
package changelog

// Package testutil provides test utilities and helpers for apichangelog tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/apichangelog/internal/surface"
)

// Workspace is an isolated directory laid out like an extraction run: a
// console dump, a directory of category documents and a history store path.
type Workspace struct {
	t         testing.TB
	Root      string
	FilesDir  string
	DumpPath  string
	StorePath string
}

// NewWorkspace creates a Workspace under t.TempDir.
func NewWorkspace(t testing.TB) *Workspace {
	t.Helper()

	root := t.TempDir()
	ws := &Workspace{
		t:         t,
		Root:      root,
		FilesDir:  filepath.Join(root, "files"),
		DumpPath:  filepath.Join(root, "dump"),
		StorePath: filepath.Join(root, "history", "changelog.json"),
	}
	if err := os.MkdirAll(ws.FilesDir, 0o755); err != nil {
		t.Fatalf("creating files dir: %v", err)
	}
	return ws
}

// Categories returns a small tracked set covering three shapes.
func Categories() []surface.Category {
	return []surface.Category{
		{Key: "api", Name: "Lua API", File: "api.json", Shape: surface.ShapeEntities},
		{Key: "enums", Name: "Lua Enums", File: "enums.json", Shape: surface.ShapeEnums},
		{Key: "events", Name: "Game Events", File: "events.json", Shape: surface.ShapeEvents},
	}
}

// WriteDump writes a console dump announcing version.
func (w *Workspace) WriteDump(version string) {
	w.t.Helper()
	w.WriteDumpText(fmt.Sprintf("ClientVersion=%s\nVersionDate=Oct 14 2026\nVersionTime=17:03:21\n", version))
}

// WriteDumpText writes the console dump verbatim.
func (w *Workspace) WriteDumpText(text string) {
	w.t.Helper()
	if err := os.WriteFile(w.DumpPath, []byte(text), 0o644); err != nil {
		w.t.Fatalf("writing dump: %v", err)
	}
}

// WriteFile writes a category document under FilesDir.
func (w *Workspace) WriteFile(name, content string) {
	w.t.Helper()
	if err := os.WriteFile(filepath.Join(w.FilesDir, name), []byte(content), 0o644); err != nil {
		w.t.Fatalf("writing %s: %v", name, err)
	}
}

// RemoveFile deletes a category document.
func (w *Workspace) RemoveFile(name string) {
	w.t.Helper()
	if err := os.Remove(filepath.Join(w.FilesDir, name)); err != nil && !os.IsNotExist(err) {
		w.t.Fatalf("removing %s: %v", name, err)
	}
}

// WriteFunctions writes api.json as a list of global functions.
func (w *Workspace) WriteFunctions(names ...string) {
	w.t.Helper()
	doc := "["
	for i, n := range names {
		if i > 0 {
			doc += ","
		}
		doc += fmt.Sprintf(`{"kind":"function","name":%q,"args":[]}`, n)
	}
	w.WriteFile("api.json", doc+"]")
}

// ReadStore returns the raw history store document.
func (w *Workspace) ReadStore() []byte {
	w.t.Helper()
	data, err := os.ReadFile(w.StorePath)
	if err != nil {
		w.t.Fatalf("reading store: %v", err)
	}
	return data
}

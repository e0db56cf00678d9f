// Package history persists the bounded record of processed client versions:
// version metadata, the full snapshot of each version, and the change set
// computed for it.
//
// The store is a single JSON document. It is loaded whole, modified in memory
// and written back atomically, so a failed run never leaves a partial store.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/ariel-frischer/apichangelog/internal/diff"
	"github.com/ariel-frischer/apichangelog/internal/snapshot"
)

// DefaultMaxVersions is the default retention cap.
const DefaultMaxVersions = 50

// VersionRecord is the metadata of one processed client version.
type VersionRecord struct {
	VersionID    string    `json:"versionId" yaml:"versionId"`
	Date         string    `json:"date" yaml:"date"`
	Time         string    `json:"time" yaml:"time"`
	CapturedAt   time.Time `json:"capturedAt" yaml:"capturedAt"`
	AddedCount   int       `json:"addedCount" yaml:"addedCount"`
	RemovedCount int       `json:"removedCount" yaml:"removedCount"`
	SourceCommit string    `json:"sourceCommit,omitempty" yaml:"sourceCommit,omitempty"`
}

// Store is the full persisted history.
//
// Versions is kept sorted newest first. Every record has exactly one entry in
// Snapshots and one in Changes under the same identifier, and no entry exists
// without its record.
type Store struct {
	Versions  []VersionRecord              `json:"versions"`
	Snapshots map[string]snapshot.Snapshot `json:"snapshots"`
	Changes   map[string]diff.ChangeSet    `json:"changes"`
}

// StoreCorruptError reports a store file that exists but cannot be decoded.
type StoreCorruptError struct {
	Path string
	Err  error
}

func (e *StoreCorruptError) Error() string {
	return fmt.Sprintf("history store %s is corrupt: %v", e.Path, e.Err)
}

func (e *StoreCorruptError) Unwrap() error {
	return e.Err
}

// New returns an empty store.
func New() *Store {
	return &Store{
		Versions:  []VersionRecord{},
		Snapshots: make(map[string]snapshot.Snapshot),
		Changes:   make(map[string]diff.ChangeSet),
	}
}

// Load reads the store at path. A missing file yields an empty store; a file
// that exists but does not decode yields a *StoreCorruptError.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading history store: %w", err)
	}

	var store Store
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&store); err != nil {
		return nil, &StoreCorruptError{Path: path, Err: err}
	}
	if err := store.check(); err != nil {
		return nil, &StoreCorruptError{Path: path, Err: err}
	}

	store.normalize()
	return &store, nil
}

// Save writes the store to path atomically.
func Save(path string, store *Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history store: %w", err)
	}
	data = append(data, '\n')

	if err := atomicWriteToFile(path, data); err != nil {
		return fmt.Errorf("writing history store: %w", err)
	}
	return nil
}

// IsCorrupt reports whether err is a StoreCorruptError.
func IsCorrupt(err error) bool {
	var corrupt *StoreCorruptError
	return errors.As(err, &corrupt)
}

// check rejects stores that decode but break the record/snapshot pairing.
func (s *Store) check() error {
	seen := make(map[string]bool, len(s.Versions))
	for _, v := range s.Versions {
		if v.VersionID == "" {
			return errors.New("version record without versionId")
		}
		if seen[v.VersionID] {
			return fmt.Errorf("duplicate version record %q", v.VersionID)
		}
		seen[v.VersionID] = true
	}
	for id := range s.Snapshots {
		if !seen[id] {
			return fmt.Errorf("snapshot %q has no version record", id)
		}
	}
	for id := range s.Changes {
		if !seen[id] {
			return fmt.Errorf("change set %q has no version record", id)
		}
	}
	return nil
}

// normalize fills nil collections and restores the descending order.
func (s *Store) normalize() {
	if s.Versions == nil {
		s.Versions = []VersionRecord{}
	}
	if s.Snapshots == nil {
		s.Snapshots = make(map[string]snapshot.Snapshot)
	}
	if s.Changes == nil {
		s.Changes = make(map[string]diff.ChangeSet)
	}
	for _, v := range s.Versions {
		if s.Changes[v.VersionID] == nil {
			s.Changes[v.VersionID] = diff.ChangeSet{}
		}
	}
	s.sortVersions()
}

func (s *Store) sortVersions() {
	sort.SliceStable(s.Versions, func(i, j int) bool {
		return CompareVersionIDs(s.Versions[i].VersionID, s.Versions[j].VersionID) > 0
	})
}

// CompareVersionIDs orders identifiers by numeric value. Non-numeric
// identifiers (such as the "unknown" sentinel) sort below every numeric one
// and compare lexically among themselves. Returns -1, 0 or 1.
func CompareVersionIDs(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)

	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// atomicWriteToFile writes data to path using temp file + rename pattern.
func atomicWriteToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting temp file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

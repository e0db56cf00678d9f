package history

import (
	"github.com/ariel-frischer/apichangelog/internal/diff"
	"github.com/ariel-frischer/apichangelog/internal/snapshot"
)

// Get returns the record for id.
func (s *Store) Get(id string) (VersionRecord, bool) {
	for _, v := range s.Versions {
		if v.VersionID == id {
			return v, true
		}
	}
	return VersionRecord{}, false
}

// Latest returns the most recent record.
func (s *Store) Latest() (VersionRecord, bool) {
	if len(s.Versions) == 0 {
		return VersionRecord{}, false
	}
	return s.Versions[0], true
}

// Remove deletes the record for id together with its snapshot and change
// set. It reports whether a record existed.
func (s *Store) Remove(id string) bool {
	found := false
	kept := s.Versions[:0]
	for _, v := range s.Versions {
		if v.VersionID == id {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	s.Versions = kept
	delete(s.Snapshots, id)
	delete(s.Changes, id)
	return found
}

// Upsert inserts or replaces the record, snapshot and change set for
// record.VersionID and restores the descending order.
func (s *Store) Upsert(record VersionRecord, snap snapshot.Snapshot, changes diff.ChangeSet) {
	s.Remove(record.VersionID)

	if snap == nil {
		snap = snapshot.Snapshot{}
	}
	if changes == nil {
		changes = diff.ChangeSet{}
	}

	s.Versions = append(s.Versions, record)
	s.Snapshots[record.VersionID] = snap
	s.Changes[record.VersionID] = changes
	s.sortVersions()
}

// Evict drops the oldest records beyond max along with their snapshots and
// change sets, and returns the evicted identifiers oldest first. A max below
// one uses DefaultMaxVersions; the history is never unbounded.
func (s *Store) Evict(max int) []string {
	if max < 1 {
		max = DefaultMaxVersions
	}
	if len(s.Versions) <= max {
		return nil
	}

	overflow := s.Versions[max:]
	evicted := make([]string, 0, len(overflow))
	for i := len(overflow) - 1; i >= 0; i-- {
		id := overflow[i].VersionID
		evicted = append(evicted, id)
		delete(s.Snapshots, id)
		delete(s.Changes, id)
	}
	s.Versions = s.Versions[:max:max]
	return evicted
}

// Predecessor returns the identifier of the version that id should be
// compared against: the newest record whose identifier differs from id.
// Older or backfilled captures are therefore compared against the newest
// recorded version, not their numeric neighbour.
func (s *Store) Predecessor(id string) (string, bool) {
	for _, v := range s.Versions {
		if v.VersionID != id {
			return v.VersionID, true
		}
	}
	return "", false
}

// ListVersionIDs returns the recorded identifiers, newest first.
func (s *Store) ListVersionIDs() []string {
	ids := make([]string, len(s.Versions))
	for i, v := range s.Versions {
		ids[i] = v.VersionID
	}
	return ids
}

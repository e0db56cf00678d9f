package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreLock marks a history store as being rewritten by a running process.
type StoreLock struct {
	// RunID is the identifier of the run holding the lock.
	RunID string `yaml:"run_id"`
	// PID is the process ID holding the lock.
	PID int `yaml:"pid"`
	// StartedAt is when the lock was acquired.
	StartedAt time.Time `yaml:"started_at"`

	path string
}

// LockedError is returned when another live process holds the store lock.
type LockedError struct {
	Path  string
	RunID string
	PID   int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("history store is locked by run %s (PID %d); lock file %s", e.RunID, e.PID, e.Path)
}

// LockPath returns the lock file path for a store.
func LockPath(storePath string) string {
	return storePath + ".lock"
}

// AcquireLock takes the lock for the store at storePath. A lock left behind by
// a process that is no longer running is reclaimed.
func AcquireLock(storePath, runID string) (*StoreLock, error) {
	lockPath := LockPath(storePath)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	lock := &StoreLock{
		RunID:     runID,
		PID:       os.Getpid(),
		StartedAt: time.Now(),
		path:      lockPath,
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := writeLockExclusive(lockPath, lock)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}

		held, loadErr := loadLock(lockPath)
		if loadErr != nil {
			return nil, loadErr
		}
		if held != nil && !IsLockStale(held) {
			return nil, &LockedError{Path: lockPath, RunID: held.RunID, PID: held.PID}
		}

		// Stale or unreadable lock
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale lock file: %w", err)
		}
	}

	return nil, fmt.Errorf("could not acquire lock %s", lockPath)
}

// Release removes the lock file. Releasing a nil lock is a no-op.
func (l *StoreLock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lock file: %w", err)
	}
	return nil
}

// IsLockStale checks if a lock is stale based on PID.
// A lock is stale if the PID that created it is no longer running.
func IsLockStale(lock *StoreLock) bool {
	if lock == nil {
		return true
	}
	return !isProcessRunning(lock.PID)
}

// isProcessRunning checks if a process with the given PID exists.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds. Send signal 0 to check existence.
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// loadLock reads a lock file. A file that cannot be parsed is returned as nil
// so the caller treats it as stale.
func loadLock(path string) (*StoreLock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading lock file: %w", err)
	}

	var lock StoreLock
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, nil
	}
	lock.path = path
	return &lock, nil
}

// writeLockExclusive creates the lock file, failing with os.ErrExist if it is
// already present.
func writeLockExclusive(path string, lock *StoreLock) error {
	data, err := yaml.Marshal(lock)
	if err != nil {
		return fmt.Errorf("marshaling lock: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing lock file: %w", err)
	}
	return f.Close()
}

package changelog

import (
	"errors"
	"fmt"
	"time"

	"github.com/ariel-frischer/apichangelog/internal/diff"
	"github.com/ariel-frischer/apichangelog/internal/git"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/release"
	"github.com/ariel-frischer/apichangelog/internal/snapshot"
	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures a Writer.
type Options struct {
	// DumpPath is the console dump the client version is read from.
	DumpPath string
	// FilesDir is the directory holding the per-category documents.
	FilesDir string
	// Categories are the tracked categories.
	Categories []surface.Category
	// StorePath is the history store document.
	StorePath string
	// MaxVersions is the retention cap. Below one, history.DefaultMaxVersions
	// applies.
	MaxVersions int
	// Lock guards the store with a lock file for the duration of the run.
	Lock bool
	// RecordCommit stamps the HEAD commit of FilesDir on the version record.
	RecordCommit bool

	Logger *zap.Logger
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// NewRunID returns the identifier of a run. Defaults to a random UUID.
	NewRunID func() string
	// Progress is told each stage the run reaches. May be nil.
	Progress func(stage string)
}

// Writer processes the current client version into the history store.
type Writer struct {
	opts   Options
	logger *zap.Logger
}

// NewWriter creates a Writer.
func NewWriter(opts Options) *Writer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}
	if opts.Progress == nil {
		opts.Progress = func(string) {}
	}
	return &Writer{opts: opts, logger: opts.Logger}
}

// Run performs one generation run.
//
// A missing client version, missing category sources and malformed category
// documents are not fatal; they are reported in Summary.Issues. A corrupt
// store, a held lock or a failed save abort the run. Everything is computed
// before the store is written, so an aborted run leaves the store untouched.
func (w *Writer) Run() (*Summary, error) {
	runID := w.opts.NewRunID()
	log := w.logger.With(zap.String("run_id", runID))
	now := w.opts.Now()

	if w.opts.Lock {
		lock, err := history.AcquireLock(w.opts.StorePath, runID)
		if err != nil {
			return nil, fmt.Errorf("locking history store: %w", err)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.Warn("failed to release store lock", zap.Error(err))
			}
		}()
	}

	summary := &Summary{RunID: runID, StorePath: w.opts.StorePath}

	w.opts.Progress("reading client version")
	rel, err := release.ResolveFile(w.opts.DumpPath, now)
	if err != nil {
		log.Warn("client version not found in dump",
			zap.String("dump", w.opts.DumpPath),
			zap.String("version", rel.Version),
			zap.Error(err),
		)
		summary.Issues = append(summary.Issues, err)
	}
	summary.Release = rel
	log = log.With(zap.String("version", rel.Version))

	w.opts.Progress("loading history store")
	store, err := history.Load(w.opts.StorePath)
	if err != nil {
		return nil, fmt.Errorf("loading history store: %w", err)
	}

	summary.Replaced = store.Remove(rel.Version)
	if summary.Replaced {
		log.Info("replacing recorded version")
	}

	w.opts.Progress("building snapshot")
	snap, issues := snapshot.NewBuilder(w.opts.FilesDir, w.opts.Categories, log).Build()
	summary.Issues = append(summary.Issues, issues...)
	summary.Items = snap.ItemCount()

	changes := diff.ChangeSet{}
	if predID, ok := store.Predecessor(rel.Version); ok {
		prev, found := store.Snapshots[predID]
		if found {
			w.opts.Progress("comparing against " + predID)
			changes = diff.Compute(prev, snap)
			summary.Predecessor = predID
		} else {
			log.Warn("predecessor has no stored snapshot", zap.String("predecessor", predID))
		}
	}

	added, removed := changes.Counts()
	record := history.VersionRecord{
		VersionID:    rel.Version,
		Date:         rel.Date,
		Time:         rel.Time,
		CapturedAt:   now.UTC(),
		AddedCount:   added,
		RemovedCount: removed,
	}
	if w.opts.RecordCommit {
		record.SourceCommit = w.sourceCommit(log)
	}

	store.Upsert(record, snap, changes)
	summary.Evicted = store.Evict(w.opts.MaxVersions)
	if len(summary.Evicted) > 0 {
		log.Info("evicted versions beyond retention cap",
			zap.Strings("evicted", summary.Evicted),
			zap.Int("max_versions", w.opts.MaxVersions),
		)
	}

	w.opts.Progress("saving history store")
	if err := history.Save(w.opts.StorePath, store); err != nil {
		return nil, err
	}

	summary.Added = added
	summary.Removed = removed
	summary.Categories = summarizeCategories(changes, w.opts.Categories)

	log.Info("recorded version",
		zap.String("predecessor", summary.Predecessor),
		zap.Int("added", added),
		zap.Int("removed", removed),
		zap.Int("issues", len(summary.Issues)),
	)
	return summary, nil
}

func (w *Writer) sourceCommit(log *zap.Logger) string {
	commit, err := git.HeadCommit(w.opts.FilesDir)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			log.Debug("files directory is not under git; skipping source commit")
		} else {
			log.Warn("could not read source commit", zap.Error(err))
		}
		return ""
	}
	return commit.String()
}

package changelog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ariel-frischer/apichangelog/internal/diff"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/release"
	"github.com/ariel-frischer/apichangelog/internal/snapshot"
	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/ariel-frischer/apichangelog/internal/testutil"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestWriter(ws *testutil.Workspace, mutate func(*Options)) (*Writer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	runs := 0
	opts := Options{
		DumpPath:    ws.DumpPath,
		FilesDir:    ws.FilesDir,
		Categories:  testutil.Categories(),
		StorePath:   ws.StorePath,
		MaxVersions: history.DefaultMaxVersions,
		Lock:        true,
		Logger:      zap.New(core),
		Now:         func() time.Time { return testNow },
		NewRunID: func() string {
			runs++
			return fmt.Sprintf("run-%d", runs)
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewWriter(opts), logs
}

func runVersion(t *testing.T, w *Writer, ws *testutil.Workspace, version string) *Summary {
	t.Helper()
	ws.WriteDump(version)
	summary, err := w.Run()
	require.NoError(t, err)
	return summary
}

func loadStore(t *testing.T, ws *testutil.Workspace) *history.Store {
	t.Helper()
	store, err := history.Load(ws.StorePath)
	require.NoError(t, err)
	return store
}

func fn(name string) surface.Item {
	return surface.Item{Kind: surface.KindFunction, Name: name, Signature: name + "()"}
}

func TestWriter_FirstRunHasEmptyChangeSet(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	ws.WriteFunctions("Foo", "Bar")
	w, _ := newTestWriter(ws, nil)

	summary := runVersion(t, w, ws, "99")
	assert.Equal(t, "99", summary.Release.Version)
	assert.Empty(t, summary.Predecessor)
	assert.False(t, summary.Replaced)
	assert.False(t, summary.HasChanges())
	assert.Equal(t, 2, summary.Items)
	assert.Equal(t, "run-1", summary.RunID)

	store := loadStore(t, ws)
	require.Len(t, store.Versions, 1)
	rec := store.Versions[0]
	assert.Equal(t, "99", rec.VersionID)
	assert.Equal(t, "Oct 14 2026", rec.Date)
	assert.Equal(t, "17:03:21", rec.Time)
	assert.Equal(t, testNow, rec.CapturedAt)
	assert.Equal(t, diff.ChangeSet{}, store.Changes["99"])
	assert.Equal(t, []string{"function:Foo", "function:Bar"}, store.Snapshots["99"].Keys("api"))

	// Lock released
	_, err := os.Stat(history.LockPath(ws.StorePath))
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_AddedAndRemoved(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	w, _ := newTestWriter(ws, nil)

	ws.WriteFunctions("Foo", "Bar")
	runVersion(t, w, ws, "99")

	ws.WriteFunctions("Foo", "Baz")
	summary := runVersion(t, w, ws, "100")

	assert.Equal(t, "99", summary.Predecessor)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Removed)
	assert.Equal(t, []CategorySummary{{Key: "api", Name: "Lua API", Added: 1, Removed: 1}}, summary.Categories)

	store := loadStore(t, ws)
	assert.Equal(t, diff.ChangeSet{
		"api": {Name: "Lua API", Added: []surface.Item{fn("Baz")}, Removed: []surface.Item{fn("Bar")}},
	}, store.Changes["100"])

	latest, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, "100", latest.VersionID)
	assert.Equal(t, 1, latest.AddedCount)
	assert.Equal(t, 1, latest.RemovedCount)
}

func TestWriter_NewCategoryIsAllAdded(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	w, _ := newTestWriter(ws, nil)

	ws.WriteFunctions("Foo")
	runVersion(t, w, ws, "99")

	ws.WriteFile("events.json", `{"dota_player_kill":{},"dota_tower_kill":{},"dota_roshan_kill":{}}`)
	summary := runVersion(t, w, ws, "100")
	assert.Equal(t, 3, summary.Added)
	assert.Equal(t, 0, summary.Removed)

	change := loadStore(t, ws).Changes["100"]["events"]
	assert.Equal(t, []string{"event:dota_player_kill", "event:dota_tower_kill", "event:dota_roshan_kill"}, surface.Keys(change.Added))
	assert.Empty(t, change.Removed)
	assert.NotNil(t, change.Removed)
}

func TestWriter_ReprocessComparesAgainstPredecessor(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	w, _ := newTestWriter(ws, nil)

	ws.WriteFunctions("Foo", "Bar")
	runVersion(t, w, ws, "99")

	ws.WriteFunctions("Foo")
	runVersion(t, w, ws, "100")

	ws.WriteFunctions("Foo", "Bar", "Baz")
	summary := runVersion(t, w, ws, "100")
	assert.True(t, summary.Replaced)
	assert.Equal(t, "99", summary.Predecessor)

	store := loadStore(t, ws)
	assert.Equal(t, []string{"100", "99"}, store.ListVersionIDs())
	assert.Equal(t, diff.ChangeSet{
		"api": {Name: "Lua API", Added: []surface.Item{fn("Baz")}, Removed: []surface.Item{}},
	}, store.Changes["100"])
	assert.Equal(t, []string{"function:Foo", "function:Bar", "function:Baz"}, store.Snapshots["100"].Keys("api"))
}

func TestWriter_ReportsStages(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	var stages []string
	w, _ := newTestWriter(ws, func(o *Options) {
		o.Progress = func(stage string) { stages = append(stages, stage) }
	})

	ws.WriteFunctions("Foo")
	runVersion(t, w, ws, "99")
	assert.Equal(t, []string{
		"reading client version",
		"loading history store",
		"building snapshot",
		"saving history store",
	}, stages)

	stages = nil
	runVersion(t, w, ws, "100")
	assert.Contains(t, stages, "comparing against 99")
}

func TestWriter_OlderCaptureComparesAgainstNewest(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	w, _ := newTestWriter(ws, nil)

	ws.WriteFunctions("Foo")
	runVersion(t, w, ws, "105")

	ws.WriteFunctions("Foo", "Bar")
	runVersion(t, w, ws, "110")

	ws.WriteFunctions("Foo", "Baz")
	summary := runVersion(t, w, ws, "100")
	assert.False(t, summary.Replaced)
	assert.Equal(t, "110", summary.Predecessor)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Removed)

	store := loadStore(t, ws)
	assert.Equal(t, []string{"110", "105", "100"}, store.ListVersionIDs())
	assert.Equal(t, diff.ChangeSet{
		"api": {Name: "Lua API", Added: []surface.Item{fn("Baz")}, Removed: []surface.Item{fn("Bar")}},
	}, store.Changes["100"])
}

func TestWriter_IdempotentReprocessing(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	w, _ := newTestWriter(ws, nil)

	ws.WriteFunctions("Foo", "Bar")
	ws.WriteFile("enums.json", `[{"name":"DOTA_TEAM","members":[{"name":"GOOD","value":2},{"name":"BAD","value":3}]}]`)
	runVersion(t, w, ws, "99")

	ws.WriteFunctions("Foo", "Baz")
	runVersion(t, w, ws, "100")
	first := loadStore(t, ws)

	runVersion(t, w, ws, "100")
	second := loadStore(t, ws)

	encode := func(v any) string {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, encode(first.Snapshots["100"]), encode(second.Snapshots["100"]))
	assert.Equal(t, encode(first.Changes["100"]), encode(second.Changes["100"]))
	assert.Equal(t, first.ListVersionIDs(), second.ListVersionIDs())
}

func TestWriter_MissingVersionRecordsUnknown(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	ws.WriteFunctions("Foo")
	w, logs := newTestWriter(ws, nil)

	ws.WriteDumpText("no version here\n")
	summary, err := w.Run()
	require.NoError(t, err)

	assert.Equal(t, release.UnknownVersion, summary.Release.Version)
	assert.Equal(t, "2026-10-19", summary.Release.Date)
	require.NotEmpty(t, summary.Issues)
	var missing *release.MissingVersionError
	assert.True(t, errors.As(summary.Issues[0], &missing))
	assert.Equal(t, 1, logs.FilterMessage("client version not found in dump").Len())

	assert.Equal(t, []string{release.UnknownVersion}, loadStore(t, ws).ListVersionIDs())
}

func TestWriter_MissingCategorySource(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	w, logs := newTestWriter(ws, nil)

	ws.WriteFunctions("Foo", "Bar")
	ws.WriteFile("events.json", `{"a":{}}`)
	runVersion(t, w, ws, "99")

	ws.RemoveFile("api.json")
	summary := runVersion(t, w, ws, "100")

	assert.Equal(t, 0, summary.Added)
	assert.Equal(t, 2, summary.Removed)
	var sawMissing bool
	for _, issue := range summary.Issues {
		if snapshot.IsMissingInput(issue) {
			sawMissing = true
		}
	}
	assert.True(t, sawMissing)
	assert.GreaterOrEqual(t, logs.FilterMessage("skipping category without source").Len(), 1)

	store := loadStore(t, ws)
	assert.NotContains(t, store.Snapshots["100"], "api")
	assert.Equal(t, []surface.Item{fn("Foo"), fn("Bar")}, store.Changes["100"]["api"].Removed)
}

func TestWriter_MalformedCategoryIsEmpty(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	w, _ := newTestWriter(ws, nil)

	ws.WriteFunctions("Foo")
	runVersion(t, w, ws, "99")

	ws.WriteFile("api.json", `{"not":"a list"`)
	summary := runVersion(t, w, ws, "100")
	assert.Equal(t, 1, summary.Removed)

	var malformed *surface.MalformedDocumentError
	found := false
	for _, issue := range summary.Issues {
		if errors.As(issue, &malformed) {
			found = true
		}
	}
	assert.True(t, found)

	store := loadStore(t, ws)
	require.Contains(t, store.Snapshots["100"], "api")
	assert.Empty(t, store.Snapshots["100"]["api"].Items)
}

func TestWriter_CorruptStoreIsFatal(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	ws.WriteFunctions("Foo")
	ws.WriteDump("100")
	require.NoError(t, os.MkdirAll(filepath.Dir(ws.StorePath), 0o755))
	require.NoError(t, os.WriteFile(ws.StorePath, []byte("{broken"), 0o644))

	w, _ := newTestWriter(ws, nil)
	_, err := w.Run()
	require.Error(t, err)
	assert.True(t, history.IsCorrupt(err))

	assert.Equal(t, "{broken", string(ws.ReadStore()))
	_, statErr := os.Stat(history.LockPath(ws.StorePath))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriter_LockedStore(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	ws.WriteFunctions("Foo")
	ws.WriteDump("100")

	held, err := history.AcquireLock(ws.StorePath, "other-run")
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Release() })

	w, _ := newTestWriter(ws, nil)
	_, err = w.Run()
	var locked *history.LockedError
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, "other-run", locked.RunID)

	_, statErr := os.Stat(ws.StorePath)
	assert.True(t, os.IsNotExist(statErr))

	unlocked, _ := newTestWriter(ws, func(o *Options) { o.Lock = false })
	_, err = unlocked.Run()
	require.NoError(t, err)
}

func TestWriter_MissingPredecessorSnapshot(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(ws.StorePath), 0o755))
	require.NoError(t, os.WriteFile(ws.StorePath, []byte(`{"versions":[{"versionId":"99"}],"snapshots":{},"changes":{}}`), 0o644))
	ws.WriteFunctions("Foo")

	w, logs := newTestWriter(ws, nil)
	summary := runVersion(t, w, ws, "100")

	assert.Empty(t, summary.Predecessor)
	assert.False(t, summary.HasChanges())
	assert.Equal(t, 1, logs.FilterMessage("predecessor has no stored snapshot").Len())
}

func TestWriter_RetentionCap(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	ws.WriteFunctions("Foo")
	w, _ := newTestWriter(ws, func(o *Options) { o.MaxVersions = 3 })

	var last *Summary
	for v := 1; v <= 5; v++ {
		last = runVersion(t, w, ws, fmt.Sprint(v))
	}
	assert.Equal(t, []string{"2"}, last.Evicted)

	store := loadStore(t, ws)
	assert.Equal(t, []string{"5", "4", "3"}, store.ListVersionIDs())
	assert.Len(t, store.Snapshots, 3)
	assert.Len(t, store.Changes, 3)
}

func TestWriter_RecordsSourceCommit(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		initRepo   bool
		wantCommit bool
	}{
		"files under git":     {initRepo: true, wantCommit: true},
		"files not under git": {initRepo: false, wantCommit: false},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ws := testutil.NewWorkspace(t)
			ws.WriteFunctions("Foo")

			var hash string
			if tc.initRepo {
				repo, err := git.PlainInit(ws.FilesDir, false)
				require.NoError(t, err)
				wt, err := repo.Worktree()
				require.NoError(t, err)
				_, err = wt.Add("api.json")
				require.NoError(t, err)
				h, err := wt.Commit("extract", &git.CommitOptions{
					Author: &object.Signature{Name: "Test User", Email: "test@test.com", When: time.Now()},
				})
				require.NoError(t, err)
				hash = h.String()
			}

			w, _ := newTestWriter(ws, func(o *Options) { o.RecordCommit = true })
			runVersion(t, w, ws, "100")

			rec, ok := loadStore(t, ws).Get("100")
			require.True(t, ok)
			if tc.wantCommit {
				assert.Equal(t, hash, rec.SourceCommit)
			} else {
				assert.Empty(t, rec.SourceCommit)
			}
		})
	}
}

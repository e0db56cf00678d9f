package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoadStore(t *testing.T, path string) *history.Store {
	t.Helper()
	store, err := history.Load(path)
	require.NoError(t, err)
	return store
}

func TestRunHistory(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	recordVersion(t, ws, "6000", "Foo")
	recordVersion(t, ws, "6001", "Foo", "Bar")
	recordVersion(t, ws, "6002", "Bar")

	tests := map[string]struct {
		limit     int
		wantLines []string
		wantMore  bool
	}{
		"all versions newest first": {
			limit:     0,
			wantLines: []string{"6002", "6001", "6000"},
		},
		"limited": {
			limit:     2,
			wantLines: []string{"6002", "6001"},
			wantMore:  true,
		},
		"limit above count": {
			limit:     10,
			wantLines: []string{"6002", "6001", "6000"},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			require.NoError(t, runHistory(&out, ws.StorePath, tt.limit, changelog.FormatOptions{Plain: true}))

			var ids []string
			for _, line := range strings.Split(out.String(), "\n") {
				if strings.HasPrefix(line, "600") {
					ids = append(ids, strings.Fields(line)[0])
				}
			}
			assert.Equal(t, tt.wantLines, ids)
			if tt.wantMore {
				assert.Contains(t, out.String(), "(2 of 3 versions shown. Use --limit 3 to see all)")
			} else {
				assert.NotContains(t, out.String(), "versions shown")
			}
		})
	}
}

func TestRunHistory_Empty(t *testing.T) {
	t.Parallel()

	ws := testutil.NewWorkspace(t)
	var out bytes.Buffer
	require.NoError(t, runHistory(&out, ws.StorePath, 0, changelog.FormatOptions{Plain: true}))
	assert.Equal(t, "No versions recorded.\n", out.String())
}

func TestRunHistory_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		setup    func(t *testing.T, ws *testutil.Workspace)
		limit    int
		wantCode int
	}{
		"negative limit": {
			limit:    -1,
			wantCode: ExitInvalidArguments,
		},
		"corrupt store": {
			setup: func(t *testing.T, ws *testutil.Workspace) {
				require.NoError(t, os.MkdirAll(filepath.Dir(ws.StorePath), 0o755))
				require.NoError(t, os.WriteFile(ws.StorePath, []byte("not json"), 0o644))
			},
			wantCode: ExitStoreUnavailable,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ws := testutil.NewWorkspace(t)
			if tt.setup != nil {
				tt.setup(t, ws)
			}

			var out bytes.Buffer
			err := runHistory(&out, ws.StorePath, tt.limit, changelog.FormatOptions{Plain: true})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCode(err))
		})
	}
}

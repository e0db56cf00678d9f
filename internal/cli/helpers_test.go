package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/ariel-frischer/apichangelog/internal/config"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(ws *testutil.Workspace) *config.Configuration {
	return &config.Configuration{
		DumpPath:      ws.DumpPath,
		FilesDir:      ws.FilesDir,
		StorePath:     ws.StorePath,
		MaxVersions:   history.DefaultMaxVersions,
		Lock:          true,
		WatchDebounce: 10 * time.Millisecond,
		Categories:    testutil.Categories(),
		Sources:       []config.ConfigSource{config.SourceDefault},
	}
}

// recordVersion writes the dump and api.json and runs generate once.
func recordVersion(t *testing.T, ws *testutil.Workspace, version string, functions ...string) {
	t.Helper()
	ws.WriteDump(version)
	ws.WriteFunctions(functions...)

	var out, errOut bytes.Buffer
	require.NoError(t, runGenerate(&out, &errOut, testConfig(ws), zap.NewNop(), runFlags{Plain: true}))
}

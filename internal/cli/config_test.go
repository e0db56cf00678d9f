package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/apichangelog/internal/config"
	"github.com/ariel-frischer/apichangelog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRunConfigShow(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		asJSON    bool
		unmarshal func([]byte, any) error
	}{
		"yaml output by default": {
			asJSON:    false,
			unmarshal: yaml.Unmarshal,
		},
		"json output when flag set": {
			asJSON:    true,
			unmarshal: json.Unmarshal,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ws := testutil.NewWorkspace(t)
			cfg := testConfig(ws)
			cfg.Sources = append(cfg.Sources, config.SourceProject)

			var buf bytes.Buffer
			require.NoError(t, runConfigShow(&buf, cfg, tt.asJSON))

			header, body, found := bytes.Cut(buf.Bytes(), []byte("\n"))
			require.True(t, found)
			assert.Equal(t, "# Configuration Sources: default, project", string(header))

			var view configView
			require.NoError(t, tt.unmarshal(body, &view))
			assert.Equal(t, ws.StorePath, view.StorePath)
			assert.Equal(t, "10ms", view.WatchDebounce)
			assert.Equal(t, testutil.Categories(), view.Categories)
		})
	}
}

func TestRunConfigKeys(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, runConfigKeys(&buf))

	out := buf.String()
	for _, key := range config.SortedKeys() {
		assert.Contains(t, out, key.Path)
		assert.Contains(t, out, key.Description)
	}
	assert.Contains(t, out, "APICHANGELOG_MAX_VERSIONS=10")
}

func TestRunConfigInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".apichangelog", "config.yml")

	var buf bytes.Buffer
	require.NoError(t, runConfigInit(&buf, path, false))
	assert.Contains(t, buf.String(), "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfigTemplate(), string(data))

	// The template loads as a valid project config
	cfg, err := config.LoadWithOptions(config.LoadOptions{ProjectConfigPath: path, SkipUserConfig: true})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxVersions)

	require.NoError(t, os.WriteFile(path, []byte("max_versions: 3\n"), 0o644))
	err = runConfigInit(&buf, path, false)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArguments, ExitCode(err))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "max_versions: 3\n", string(data), "existing file must be kept without --force")

	require.NoError(t, runConfigInit(&buf, path, true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfigTemplate(), string(data))
}

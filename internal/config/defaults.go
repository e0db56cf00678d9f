package config

import (
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/surface"
)

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# apichangelog configuration
# See 'apichangelog config keys' for all options

# Inputs
dump_path: dumper/dump                # Console dump carrying ClientVersion/VersionDate/VersionTime
files_dir: files                      # Directory holding the per-category extracts

# History store
store_path: files/changelog.json      # Single JSON document with versions, snapshots and changes
max_versions: 50                      # Versions retained; older ones are evicted
lock: true                            # Guard the store with a lock file during a run
record_commit: true                   # Stamp the HEAD commit of files_dir on each version

# Watch settings
watch_debounce: 500ms                 # Quiet period after the dump changes before a run
notify: false                         # Desktop notification after each watch run

# Tracked categories (shape: entities | enums | types | modifiers | events | convars)
# Uncomment to replace the built-in set.
# categories:
#   - key: api
#     name: Lua API
#     file: vscripts/api.json
#     shape: entities
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"dump_path":      "dumper/dump",
		"files_dir":      "files",
		"store_path":     "files/changelog.json",
		"max_versions":   history.DefaultMaxVersions,
		"lock":           true,
		"record_commit":  true,
		"watch_debounce": "500ms",
		"notify":         false,
		"categories":     categoryDefaults(surface.DefaultCategories()),
	}
}

func categoryDefaults(categories []surface.Category) []map[string]interface{} {
	out := make([]map[string]interface{}, len(categories))
	for i, c := range categories {
		out[i] = map[string]interface{}{
			"key":   c.Key,
			"name":  c.Name,
			"file":  c.File,
			"shape": string(c.Shape),
		}
	}
	return out
}

package config

import "sort"

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeDuration
	TypeString
	TypeList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeDuration:
		return "duration"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type.
type ConfigKeySchema struct {
	Path        string          // Key path (e.g., "max_versions")
	Type        ConfigValueType // Expected value type
	Description string          // Human-readable description for help text
	Default     interface{}     // Default value
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"dump_path": {
		Path:        "dump_path",
		Type:        TypeString,
		Description: "Console dump the client version is read from",
	},
	"files_dir": {
		Path:        "files_dir",
		Type:        TypeString,
		Description: "Directory holding the per-category extracts",
	},
	"store_path": {
		Path:        "store_path",
		Type:        TypeString,
		Description: "History store document",
	},
	"max_versions": {
		Path:        "max_versions",
		Type:        TypeInt,
		Description: "Number of versions retained; the oldest beyond it are evicted",
	},
	"lock": {
		Path:        "lock",
		Type:        TypeBool,
		Description: "Guard the history store with a lock file during a run",
	},
	"record_commit": {
		Path:        "record_commit",
		Type:        TypeBool,
		Description: "Stamp the HEAD commit of files_dir on each version record",
	},
	"watch_debounce": {
		Path:        "watch_debounce",
		Type:        TypeDuration,
		Description: "Quiet period after the dump changes before watch runs",
	},
	"notify": {
		Path:        "notify",
		Type:        TypeBool,
		Description: "Send a desktop notification after each watch run",
	},
	"categories": {
		Path:        "categories",
		Type:        TypeList,
		Description: "Tracked categories (key, name, file, shape)",
	},
}

func init() {
	defaults := GetDefaults()
	for key, schema := range KnownKeys {
		if key == "categories" {
			schema.Default = "built-in set"
		} else {
			schema.Default = defaults[key]
		}
		KnownKeys[key] = schema
	}
}

// SortedKeys returns the known keys in alphabetical order.
func SortedKeys() []ConfigKeySchema {
	keys := make([]ConfigKeySchema, 0, len(KnownKeys))
	for _, schema := range KnownKeys {
		keys = append(keys, schema)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Path < keys[j].Path })
	return keys
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// Package config provides hierarchical configuration management for apichangelog using koanf.
// Configuration is loaded with priority: environment variables > project config
// (.apichangelog/config.yml or .apichangelog/config.json) > user config
// (~/.config/apichangelog/config.yml) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "APICHANGELOG_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the apichangelog configuration
type Configuration struct {
	// DumpPath is the console dump the client version is read from.
	DumpPath string `koanf:"dump_path" yaml:"dump_path" validate:"required"`
	// FilesDir holds the per-category extracts.
	FilesDir string `koanf:"files_dir" yaml:"files_dir" validate:"required"`
	// StorePath is the history store document.
	StorePath string `koanf:"store_path" yaml:"store_path" validate:"required"`
	// MaxVersions caps the number of retained versions.
	MaxVersions int `koanf:"max_versions" yaml:"max_versions" validate:"min=1"`
	// Lock guards the store with a lock file during a run.
	Lock bool `koanf:"lock" yaml:"lock"`
	// RecordCommit stamps the HEAD commit of FilesDir on each version record.
	RecordCommit bool `koanf:"record_commit" yaml:"record_commit"`
	// Notify sends a desktop notification after each watch run.
	Notify bool `koanf:"notify" yaml:"notify"`
	// WatchDebounce is how long the dump must stay quiet before watch runs.
	WatchDebounce time.Duration `koanf:"watch_debounce" yaml:"watch_debounce" validate:"min=0"`
	// Categories are the tracked categories, in processing order.
	Categories []surface.Category `koanf:"categories" yaml:"categories" validate:"required,min=1,unique=Key,dive"`

	// Sources records which layers contributed to the configuration.
	Sources []ConfigSource `koanf:"-" yaml:"-"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .apichangelog/config.yml)
	ProjectConfigPath string
	// SkipUserConfig ignores the user-level config file.
	SkipUserConfig bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	sources := []ConfigSource{SourceDefault}

	loadDefaults(k)

	if !opts.SkipUserConfig {
		loaded, err := loadUserConfig(k)
		if err != nil {
			return nil, err
		}
		if loaded {
			sources = append(sources, SourceUser)
		}
	}

	loaded, err := loadProjectConfig(k, opts.ProjectConfigPath)
	if err != nil {
		return nil, err
	}
	if loaded {
		sources = append(sources, SourceProject)
	}

	if hasEnvOverrides() {
		if err := loadEnvironmentConfig(k); err != nil {
			return nil, err
		}
		sources = append(sources, SourceEnv)
	}

	cfg, err := finalizeConfig(k)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	return cfg, nil
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config if present.
func loadUserConfig(k *koanf.Koanf) (bool, error) {
	path, err := UserConfigPath()
	if err != nil || !fileExists(path) {
		return false, nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return false, fmt.Errorf("loading user config: %w", err)
	}
	return true, nil
}

// loadProjectConfig loads the project-level config. YAML is preferred; a JSON
// config is used when no YAML config exists. A custom path is parsed by its
// extension.
func loadProjectConfig(k *koanf.Koanf, customPath string) (bool, error) {
	path := customPath
	if path == "" {
		path = ProjectConfigPath()
		if !fileExists(path) {
			path = ProjectJSONConfigPath()
		}
	}
	if !fileExists(path) {
		if customPath != "" {
			return false, fmt.Errorf("config file %s not found", customPath)
		}
		return false, nil
	}

	load := loadYAMLConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		load = loadJSONConfig
	}
	if err := load(k, path, "project"); err != nil {
		return false, fmt.Errorf("loading project config: %w", err)
	}
	return true, nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadJSONConfig loads a JSON config file
func loadJSONConfig(k *koanf.Koanf, path, configType string) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return &ValidationError{Source: path, Message: fmt.Sprintf("failed to load %s config: %v", configType, err)}
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

func hasEnvOverrides() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix) {
			return true
		}
	}
	return false
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate("config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.DumpPath = expandHomePath(cfg.DumpPath)
	cfg.FilesDir = expandHomePath(cfg.FilesDir)
	cfg.StorePath = expandHomePath(cfg.StorePath)

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: APICHANGELOG_MAX_VERSIONS -> max_versions
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

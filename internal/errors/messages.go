package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ariel-frischer/apichangelog/internal/config"
)

// Common error messages for the apichangelog CLI.
// These templates ensure consistent, actionable error messages.

// StoreCorrupt creates an error for a history store that exists but cannot be decoded.
func StoreCorrupt(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		"history store cannot be read",
		"Restore "+path+" from a backup or from version control",
		"Or move it aside to start a fresh history: mv "+path+" "+path+".bak",
	).WithDetail("store", path)
}

// StoreLocked creates an error when another run holds the store lock.
func StoreLocked(lockPath string, pid int, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		"another apichangelog run is updating the history store",
		"Wait for the other run to finish",
		fmt.Sprintf("If process %d is not an apichangelog run, remove the lock: rm %s", pid, lockPath),
		"Or skip locking with: apichangelog generate --no-lock",
	).WithDetail("lock", lockPath).WithDetail("held by", "pid "+strconv.Itoa(pid))
}

// ConfigInvalid creates an error for configuration that fails to load or
// validate. A *config.ValidationError adds where the bad value came from.
func ConfigInvalid(err error) *CLIError {
	cliErr := WrapWithMessage(err, Configuration,
		"invalid configuration",
		"Check .apichangelog/config.yml and ~/.config/apichangelog/config.yml",
		"List the available keys with: apichangelog config keys",
		"Inspect the effective configuration with: apichangelog config show",
	)
	return withValidationDetails(cliErr, err)
}

func withValidationDetails(cliErr *CLIError, err error) *CLIError {
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		return cliErr
	}
	source := verr.Source
	if verr.Line > 0 {
		source = fmt.Sprintf("%s:%d:%d", source, verr.Line, verr.Column)
	}
	return cliErr.WithDetail("source", source).
		WithDetail("key", verr.Field).
		WithDetail("category", verr.Category)
}

// VersionNotRecorded creates an error when a requested version is not in the
// history. recorded lists the newest recorded identifiers.
func VersionNotRecorded(version string, recorded []string, err error) *CLIError {
	cliErr := WrapWithMessage(err, Argument,
		fmt.Sprintf("version %s is not recorded", version),
		"List recorded versions with: apichangelog history",
		"Record the current version with: apichangelog generate",
	)
	if version == "" {
		cliErr.Message = "no versions recorded yet"
	}
	return cliErr.WithDetail("recorded", strings.Join(recorded, ", "))
}

// InvalidOverride creates an error for a flag value that leaves the
// configuration invalid.
func InvalidOverride(err error) *CLIError {
	cliErr := WrapWithMessage(err, Argument,
		"invalid flag value",
		"--max-versions must be at least 1",
		"--store must differ from --dump and from every tracked category file",
	)
	return withValidationDetails(cliErr, err)
}

// InvalidFormat creates an error for an unsupported output format.
func InvalidFormat(format string, valid []string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unsupported format: %s", format),
		"apichangelog show [version] --format text|markdown|json|yaml",
		fmt.Sprintf("Valid formats: %v", valid),
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'apichangelog <command> --help' to see valid options",
	)
}

// WatchUnavailable creates an error when the dump cannot be watched.
func WatchUnavailable(path string, err error) *CLIError {
	return WrapWithMessage(err, Prerequisite,
		"cannot watch "+path,
		"Check that the dump directory exists and is readable",
		"On Linux, raise fs.inotify.max_user_watches if the watch limit is reached",
	).WithDetail("dump", path)
}

// FileNotWritable creates an error when a file cannot be written.
func FileNotWritable(path string, err error) *CLIError {
	return WrapWithMessage(err, Runtime,
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure parent directory exists and is writable",
	).WithDetail("file", path)
}

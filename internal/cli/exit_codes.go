package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/history"
)

// Exit codes for the apichangelog CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitRunFailed indicates the command failed at runtime
	ExitRunFailed = 1

	// ExitStoreUnavailable indicates the history store is corrupt or locked
	ExitStoreUnavailable = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitInvalidConfig indicates the configuration failed to load or validate
	ExitInvalidConfig = 4

	// ExitIssuesReported indicates a run completed with issues under --strict
	ExitIssuesReported = 5
)

// ExitError ends a command with a specific exit code. Its message has already
// been shown to the user.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError returns an ExitError with code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		exitErr *ExitError
		locked  *history.LockedError
	)
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &locked), history.IsCorrupt(err):
		return ExitStoreUnavailable
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument:
			return ExitInvalidArguments
		case clierrors.Configuration:
			return ExitInvalidConfig
		}
	}
	return ExitRunFailed
}

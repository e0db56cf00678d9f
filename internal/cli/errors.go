package cli

import (
	"errors"
	"io"

	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/history"
)

// toCLIError converts any command error into a CLIError with remediation.
func toCLIError(err error) *clierrors.CLIError {
	var (
		locked  *history.LockedError
		corrupt *history.StoreCorruptError
	)
	switch {
	case errors.As(err, &locked):
		return clierrors.StoreLocked(locked.Path, locked.PID, err)
	case errors.As(err, &corrupt):
		return clierrors.StoreCorrupt(corrupt.Path, err)
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		return cliErr
	}
	return clierrors.Wrap(err, clierrors.Runtime)
}

// reportError prints err unless it is an ExitError, whose message was
// already written by the command.
func reportError(w io.Writer, err error) {
	var exitErr *ExitError
	if err == nil || errors.As(err, &exitErr) {
		return
	}
	clierrors.FprintError(w, toCLIError(err))
}

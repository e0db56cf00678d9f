package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
	clierrors "github.com/ariel-frischer/apichangelog/internal/errors"
	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err      error
		wantCode int
	}{
		"nil": {
			err:      nil,
			wantCode: ExitSuccess,
		},
		"exit error": {
			err:      NewExitError(ExitIssuesReported),
			wantCode: ExitIssuesReported,
		},
		"locked store": {
			err:      fmt.Errorf("locking history store: %w", &history.LockedError{Path: "s.lock", RunID: "r", PID: 1}),
			wantCode: ExitStoreUnavailable,
		},
		"corrupt store": {
			err:      fmt.Errorf("loading history store: %w", &history.StoreCorruptError{Path: "s", Err: errors.New("bad")}),
			wantCode: ExitStoreUnavailable,
		},
		"argument error": {
			err:      clierrors.VersionNotRecorded("1", nil, changelog.ErrVersionNotRecorded),
			wantCode: ExitInvalidArguments,
		},
		"config error": {
			err:      clierrors.ConfigInvalid(errors.New("categories: required")),
			wantCode: ExitInvalidConfig,
		},
		"plain error": {
			err:      errors.New("boom"),
			wantCode: ExitRunFailed,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantCode, ExitCode(tt.err))
		})
	}
}

func TestToCLIError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err          error
		wantCategory clierrors.ErrorCategory
		wantMessage  string
	}{
		"locked store gets remediation": {
			err:          fmt.Errorf("locking history store: %w", &history.LockedError{Path: "s.lock", RunID: "r", PID: 42}),
			wantCategory: clierrors.Runtime,
			wantMessage:  "another apichangelog run is updating the history store",
		},
		"corrupt store gets remediation": {
			err:          &history.StoreCorruptError{Path: "s", Err: errors.New("bad")},
			wantCategory: clierrors.Runtime,
			wantMessage:  "history store cannot be read",
		},
		"cli error passes through": {
			err:          clierrors.NewArgumentError("bad flag"),
			wantCategory: clierrors.Argument,
			wantMessage:  "bad flag",
		},
		"plain error becomes runtime": {
			err:          errors.New("boom"),
			wantCategory: clierrors.Runtime,
			wantMessage:  "boom",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cliErr := toCLIError(tt.err)
			assert.Equal(t, tt.wantCategory, cliErr.Category)
			assert.Contains(t, cliErr.Message, tt.wantMessage)
			assert.ErrorIs(t, cliErr, tt.err)
		})
	}
}

func TestReportError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	reportError(&buf, NewExitError(ExitIssuesReported))
	assert.Empty(t, buf.String())

	reportError(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

package notify

import (
	"context"
	"os"
	"time"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// dispatchTimeout bounds how long a single notification may block a run.
const dispatchTimeout = 5 * time.Second

// Handler decides whether to notify and dispatches through a Sender.
// A disabled handler no-ops on every call.
type Handler struct {
	enabled      bool
	sender       Sender
	logger       *zap.Logger
	checkSession bool
}

// NewHandler creates a handler using the platform sender. Notifications are
// also skipped in CI and in non-interactive sessions.
func NewHandler(enabled bool, logger *zap.Logger) *Handler {
	return newHandler(enabled, NewSender(), logger, true)
}

// NewHandlerWithSender creates a handler with a custom sender (for testing).
// Session checks are skipped.
func NewHandlerWithSender(enabled bool, sender Sender, logger *zap.Logger) *Handler {
	return newHandler(enabled, sender, logger, false)
}

func newHandler(enabled bool, sender Sender, logger *zap.Logger, checkSession bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		enabled:      enabled,
		sender:       sender,
		logger:       logger.Named("notify"),
		checkSession: checkSession,
	}
}

// OnVersionRecorded notifies about a run that recorded a version.
func (h *Handler) OnVersionRecorded(s *changelog.Summary) {
	h.dispatch(VersionRecorded(s))
}

// OnRunFailed notifies that a generation run failed.
func (h *Handler) OnRunFailed(err error) {
	h.dispatch(RunFailed(err))
}

func (h *Handler) isEnabled() bool {
	if h == nil || !h.enabled {
		return false
	}
	if h.checkSession {
		if isCI() {
			h.logger.Debug("notifications skipped in CI environment")
			return false
		}
		if !isInteractive() {
			h.logger.Debug("notifications skipped in non-interactive session")
			return false
		}
	}
	if !h.sender.Available() {
		h.logger.Debug("no notification tool available")
		return false
	}
	return true
}

// dispatch sends n with a timeout. Failures are logged and never returned.
func (h *Handler) dispatch(n Notification) {
	if !h.isEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	if err := h.sender.Send(ctx, n); err != nil {
		h.logger.Warn("sending notification failed", zap.String("title", n.Title), zap.Error(err))
	}
}

// isCI checks for common CI environment variables.
func isCI() bool {
	ciVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"TRAVIS",
		"JENKINS_URL",
		"BUILDKITE",
		"DRONE",
		"TEAMCITY_VERSION",
		"TF_BUILD",            // Azure DevOps
		"BITBUCKET_PIPELINES", // Bitbucket
		"CODEBUILD_BUILD_ID",  // AWS CodeBuild
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// isInteractive checks if the session is interactive (has TTY).
func isInteractive() bool {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return true
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

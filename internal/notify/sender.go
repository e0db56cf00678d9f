package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Sender defines the interface for platform-specific notification senders
type Sender interface {
	// Send shows n through the OS notification system
	Send(ctx context.Context, n Notification) error

	// Available returns true if notifications are supported
	Available() bool
}

// NewSender creates a platform-specific notification sender based on the current OS.
// For unsupported platforms, it returns a no-op sender.
func NewSender() Sender {
	switch runtime.GOOS {
	case "darwin":
		return &darwinSender{}
	case "linux":
		return &linuxSender{}
	default:
		return &noopSender{}
	}
}

// toolAvailable checks if a command-line tool is available in PATH
func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// linuxSender uses notify-send from libnotify.
type linuxSender struct{}

func (s *linuxSender) Available() bool { return toolAvailable("notify-send") }

func (s *linuxSender) Send(ctx context.Context, n Notification) error {
	cmd := exec.CommandContext(ctx, "notify-send", "--app-name=apichangelog", "--urgency="+string(n.Urgency), n.Title, n.Body)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify-send: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// darwinSender uses osascript.
type darwinSender struct{}

func (s *darwinSender) Available() bool { return toolAvailable("osascript") }

func (s *darwinSender) Send(ctx context.Context, n Notification) error {
	script := fmt.Sprintf("display notification %q with title %q", n.Body, n.Title)
	if out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// noopSender is a sender that does nothing (for unsupported platforms)
type noopSender struct{}

func (s *noopSender) Send(context.Context, Notification) error { return nil }
func (s *noopSender) Available() bool                          { return false }

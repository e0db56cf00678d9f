// Package notify sends desktop notifications when watch records a version.
package notify

import (
	"fmt"

	"github.com/ariel-frischer/apichangelog/internal/changelog"
)

// Urgency is the desktop urgency of a notification.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Notification is one desktop notification about a generation run.
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
}

// VersionRecorded describes a run that recorded a version. Runs with issues
// say how many categories could not be read.
func VersionRecorded(s *changelog.Summary) Notification {
	var body string
	switch {
	case s.Predecessor == "":
		body = "First recorded version, nothing to compare against"
	case !s.HasChanges():
		body = fmt.Sprintf("No API changes since %s", s.Predecessor)
	default:
		body = fmt.Sprintf("%d added, %d removed since %s", s.Added, s.Removed, s.Predecessor)
	}
	if n := len(s.Issues); n > 0 {
		body += fmt.Sprintf(" (%d issue(s))", n)
	}
	return Notification{
		Title:   "apichangelog: version " + s.Release.Version,
		Body:    body,
		Urgency: UrgencyNormal,
	}
}

// RunFailed describes a run that recorded nothing.
func RunFailed(err error) Notification {
	return Notification{
		Title:   "apichangelog: generation failed",
		Body:    err.Error(),
		Urgency: UrgencyCritical,
	}
}

// Package release extracts the client version and release metadata from a
// raw console dump.
package release

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// UnknownVersion is recorded when the dump carries no version identifier.
const UnknownVersion = "unknown"

// DateLayout is the layout of the fallback release date.
const DateLayout = "2006-01-02"

var (
	versionPattern = regexp.MustCompile(`ClientVersion=(\d+)`)
	datePattern    = regexp.MustCompile(`VersionDate=(.+)`)
	timePattern    = regexp.MustCompile(`VersionTime=(.+)`)
)

// Release identifies the client build a dump was captured from.
type Release struct {
	Version string
	Date    string
	Time    string
}

// MissingVersionError is returned when no ClientVersion line is found.
// The accompanying Release still carries best-effort metadata.
type MissingVersionError struct {
	Source string
}

func (e *MissingVersionError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no ClientVersion found in %s", e.Source)
	}
	return "no ClientVersion found in dump"
}

// Resolve extracts release metadata from dump text.
//
// The version is required: without it the returned Release uses
// UnknownVersion and the error is a *MissingVersionError. The date falls back
// to now and the time to an empty string.
func Resolve(dump string, now time.Time) (Release, error) {
	rel := Release{
		Date: now.Format(DateLayout),
	}

	if m := datePattern.FindStringSubmatch(dump); m != nil {
		if date := strings.TrimSpace(m[1]); date != "" {
			rel.Date = date
		}
	}
	if m := timePattern.FindStringSubmatch(dump); m != nil {
		rel.Time = strings.TrimSpace(m[1])
	}

	m := versionPattern.FindStringSubmatch(dump)
	if m == nil {
		rel.Version = UnknownVersion
		return rel, &MissingVersionError{}
	}
	rel.Version = m[1]
	return rel, nil
}

// ResolveFile reads the dump at path and resolves it. An unreadable dump is
// reported as a *MissingVersionError alongside a fallback Release.
func ResolveFile(path string, now time.Time) (Release, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		rel, _ := Resolve("", now)
		return rel, fmt.Errorf("reading dump %s: %v: %w", path, err, &MissingVersionError{Source: path})
	}

	rel, err := Resolve(string(data), now)
	if err != nil {
		return rel, &MissingVersionError{Source: path}
	}
	return rel, nil
}

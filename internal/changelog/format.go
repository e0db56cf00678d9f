package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ariel-frischer/apichangelog/internal/history"
	"github.com/ariel-frischer/apichangelog/internal/snapshot"
	"github.com/ariel-frischer/apichangelog/internal/surface"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// ChangeStyle defines the color and icon for added or removed items.
type ChangeStyle struct {
	Color *color.Color
	Icon  string
}

var (
	addedStyle   = ChangeStyle{Color: color.New(color.FgGreen), Icon: "+"}
	removedStyle = ChangeStyle{Color: color.New(color.FgRed), Icon: "-"}
	warnStyle    = ChangeStyle{Color: color.New(color.FgYellow), Icon: "⚠"}
)

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatSummary writes the outcome of a run.
func FormatSummary(s *Summary, w io.Writer, opts FormatOptions) error {
	header := fmt.Sprintf("Recorded version %s", s.Release.Version)
	if s.Release.Date != "" {
		header += fmt.Sprintf(" (%s)", strings.TrimSpace(s.Release.Date+" "+s.Release.Time))
	}
	if err := writeHeader(header, w, opts); err != nil {
		return err
	}

	switch {
	case s.Predecessor != "":
		fmt.Fprintf(w, "Compared against %s\n", s.Predecessor)
	default:
		fmt.Fprintln(w, "No predecessor; change set left empty")
	}
	if s.Replaced {
		fmt.Fprintln(w, "Replaced the previously recorded entry")
	}

	fmt.Fprintf(w, "Changes: %s added, %s removed (%d items tracked)\n",
		styled(addedStyle, fmt.Sprintf("+%d", s.Added), opts),
		styled(removedStyle, fmt.Sprintf("-%d", s.Removed), opts),
		s.Items,
	)
	for _, c := range s.Categories {
		fmt.Fprintf(w, "  %s: %s %s\n",
			displayName(c.Key, c.Name),
			styled(addedStyle, fmt.Sprintf("+%d", c.Added), opts),
			styled(removedStyle, fmt.Sprintf("-%d", c.Removed), opts),
		)
	}

	if len(s.Evicted) > 0 {
		fmt.Fprintf(w, "Evicted: %s\n", strings.Join(s.Evicted, ", "))
	}

	if len(s.Issues) > 0 {
		width := resolveWidth(opts.MaxWidth)
		fmt.Fprintf(w, "\n%s\n", styled(warnStyle, fmt.Sprintf("%d issue(s):", len(s.Issues)), opts))
		for _, issue := range s.Issues {
			prefix := "  - "
			text := issue.Error()
			if snapshot.IsMissingInput(issue) {
				text += " (category skipped)"
			}
			if !opts.Plain {
				text = wrapText(text, width-len(prefix), "    ")
			}
			if _, err := fmt.Fprintf(w, "%s%s\n", prefix, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatHistory writes one line per version record, newest first.
func FormatHistory(records []history.VersionRecord, w io.Writer, opts FormatOptions) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No versions recorded.")
		return err
	}

	for _, r := range records {
		when := strings.TrimSpace(r.Date + " " + r.Time)
		line := fmt.Sprintf("%-10s %-24s %s %s",
			r.VersionID,
			when,
			styled(addedStyle, fmt.Sprintf("+%-5d", r.AddedCount), opts),
			styled(removedStyle, fmt.Sprintf("-%-5d", r.RemovedCount), opts),
		)
		if r.SourceCommit != "" {
			line += " " + shortCommit(r.SourceCommit)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatEntry writes a version's change set with terminal styling.
func FormatEntry(e Entry, categories []surface.Category, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	header := e.Version
	if when := strings.TrimSpace(e.Date + " " + e.Time); when != "" {
		header = fmt.Sprintf("%s (%s)", e.Version, when)
	}
	if err := writeHeader(header, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if e.Changes.IsEmpty() {
		_, err := fmt.Fprintln(w, "No API changes.")
		return err
	}

	for _, key := range CategoryOrder(e.Changes, categories) {
		change := e.Changes[key]
		if _, err := fmt.Fprintf(w, "\n%s\n", displayName(key, change.Name)); err != nil {
			return err
		}
		for _, item := range change.Added {
			if err := writeItem(item, addedStyle, w, opts, width); err != nil {
				return err
			}
		}
		for _, item := range change.Removed {
			if err := writeItem(item, removedStyle, w, opts, width); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHeader(header string, w io.Writer, opts FormatOptions) error {
	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeItem writes a single added or removed item with optional wrapping.
func writeItem(item surface.Item, style ChangeStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  " + style.Icon + " "
	text := fmt.Sprintf("%s (%s)", item.Label(), item.Kind)

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(text, width-len(prefix), "    ")

	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", colored(prefix), colored(wrapped))
	return err
}

func styled(style ChangeStyle, text string, opts FormatOptions) string {
	if opts.Plain {
		return text
	}
	return style.Color.Sprint(text)
}

func displayName(key, name string) string {
	if name == "" || name == key {
		return key
	}
	return fmt.Sprintf("%s [%s]", name, key)
}

func shortCommit(commit string) string {
	hash, dirty := strings.CutSuffix(commit, "-dirty")
	if len(hash) > 7 {
		hash = hash[:7]
	}
	if dirty {
		return hash + "-dirty"
	}
	return hash
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		// Find the last space within maxWidth
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}

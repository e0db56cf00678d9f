package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// palette styles each part of a rendered error.
type palette struct {
	label, category, message, detail, usage, fix, bullet func(a ...interface{}) string
}

var (
	colored = palette{
		label:    color.New(color.FgRed, color.Bold).SprintFunc(),
		category: color.New(color.FgYellow).SprintFunc(),
		message:  color.New(color.FgRed).SprintFunc(),
		detail:   color.New(color.Faint).SprintFunc(),
		usage:    color.New(color.FgCyan).SprintFunc(),
		fix:      color.New(color.FgGreen, color.Bold).SprintFunc(),
		bullet:   color.New(color.FgGreen).SprintFunc(),
	}
	plain = palette{
		label: fmt.Sprint, category: fmt.Sprint, message: fmt.Sprint, detail: fmt.Sprint,
		usage: fmt.Sprint, fix: fmt.Sprint, bullet: fmt.Sprint,
	}
)

// FormatError renders err for the terminal. fatih/color drops the styling
// when stdout is not a terminal or NO_COLOR is set.
func FormatError(err *CLIError) string {
	return render(err, colored)
}

// FormatErrorPlain renders err without styling.
func FormatErrorPlain(err *CLIError) string {
	return render(err, plain)
}

// FprintError writes the rendered err to w.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}

func render(err *CLIError, p palette) string {
	if err == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]: %s\n", p.label("Error"), p.category(err.Category.String()), p.message(err.Message))

	width := 0
	for _, d := range err.Details {
		width = max(width, len(d.Label))
	}
	for _, d := range err.Details {
		fmt.Fprintf(&sb, "  %s %s\n", p.detail(fmt.Sprintf("%-*s", width+1, d.Label+":")), d.Value)
	}

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", p.fix("Usage:"), p.usage(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", p.fix("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", p.bullet("•"), step)
		}
	}
	return sb.String()
}

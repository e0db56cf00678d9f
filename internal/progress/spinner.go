// Package progress reports a running changelog generation on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Terminal describes the stream progress is written to.
type Terminal struct {
	TTY     bool
	Color   bool
	Unicode bool
}

// DetectTerminal inspects f. NO_COLOR turns colour off; APICHANGELOG_ASCII=1
// and TERM=dumb fall back to ASCII glyphs.
func DetectTerminal(f *os.File) Terminal {
	if f == nil {
		f = os.Stderr
	}
	tty := term.IsTerminal(int(f.Fd()))
	ascii := os.Getenv("APICHANGELOG_ASCII") == "1" || os.Getenv("TERM") == "dumb"
	return Terminal{
		TTY:     tty,
		Color:   tty && os.Getenv("NO_COLOR") == "",
		Unicode: tty && !ascii,
	}
}

type glyphs struct {
	done   string
	failed string
	frames []string
}

var (
	unicodeGlyphs = glyphs{done: "✓", failed: "✗", frames: spinner.CharSets[14]}
	asciiGlyphs   = glyphs{done: "[OK]", failed: "[FAIL]", frames: spinner.CharSets[9]}
)

// Spinner shows the task and current stage of a run. Off a TTY it stays
// silent until Stop prints the outcome line.
type Spinner struct {
	term   Terminal
	glyphs glyphs
	w      io.Writer
	s      *spinner.Spinner
	task   string
}

// NewSpinner creates a Spinner writing to w.
func NewSpinner(t Terminal, w io.Writer) *Spinner {
	g := asciiGlyphs
	if t.Unicode {
		g = unicodeGlyphs
	}
	return &Spinner{term: t, glyphs: g, w: w}
}

// Start begins animating task.
func (p *Spinner) Start(task string) {
	p.task = task
	if !p.term.TTY {
		return
	}
	if p.s == nil {
		p.s = spinner.New(p.glyphs.frames, 100*time.Millisecond, spinner.WithWriter(p.w))
		if !p.term.Color {
			_ = p.s.Color("reset")
		}
	}
	p.s.Suffix = " " + task
	if !p.s.Active() {
		p.s.Start()
	}
}

// Stage shows the step the run has reached, e.g. "building snapshot".
func (p *Spinner) Stage(stage string) {
	if p.s == nil {
		return
	}
	p.s.Lock()
	p.s.Suffix = fmt.Sprintf(" %s: %s", p.task, stage)
	p.s.Unlock()
}

// Stop halts the animation and prints the outcome line.
func (p *Spinner) Stop(success bool, message string) {
	if p.s != nil && p.s.Active() {
		p.s.Stop()
	}
	if message == "" {
		return
	}
	symbol, attr := p.glyphs.done, color.FgGreen
	if !success {
		symbol, attr = p.glyphs.failed, color.FgRed
	}
	if p.term.Color {
		symbol = color.New(attr).Sprint(symbol)
	}
	fmt.Fprintf(p.w, "%s %s\n", symbol, message)
}

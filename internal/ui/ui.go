// Package ui provides the scanner's colorized, TTY-aware terminal output.
// It mirrors the teacher CLI's --no-color / NO_COLOR handling; this file
// is a from-scratch rebuild of that package since only its dependency
// footprint (fatih/color, mattn/go-isatty) survived the retrieval pack.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// UI renders progress and result output to a writer, honoring color
// preferences resolved once at startup.
type UI struct {
	out      io.Writer
	colorize bool

	critical *color.Color
	high     *color.Color
	medium   *color.Color
	info     *color.Color
	dim      *color.Color
}

// New builds a UI writing to out. noColor forces plain output regardless
// of TTY detection; when false, color is enabled only if out is a TTY and
// NO_COLOR is unset, matching the teacher's `--no-color` / NO_COLOR
// precedence in cmd/cie/main.go.
func New(out *os.File, noColor bool) *UI {
	enable := !noColor && os.Getenv("NO_COLOR") == "" && isatty.IsTerminal(out.Fd())
	u := &UI{
		out:      out,
		colorize: enable,
		critical: color.New(color.FgRed, color.Bold),
		high:     color.New(color.FgRed),
		medium:   color.New(color.FgYellow),
		info:     color.New(color.FgCyan),
		dim:      color.New(color.Faint),
	}
	if !enable {
		u.critical.DisableColor()
		u.high.DisableColor()
		u.medium.DisableColor()
		u.info.DisableColor()
		u.dim.DisableColor()
	}
	return u
}

// SeverityColor returns the color.Color used to render a given severity
// label; Info and any other severity (such as Unknown) use the info color.
func (u *UI) SeverityColor(severity string) *color.Color {
	switch severity {
	case "Critical":
		return u.critical
	case "High":
		return u.high
	case "Medium":
		return u.medium
	default:
		return u.info
	}
}

// Out returns the underlying writer, for callers that need to hand a
// color.Color its target directly (e.g. Color.Fprintf).
func (u *UI) Out() io.Writer { return u.out }

// Printf writes an uncolored line to the UI's output.
func (u *UI) Printf(format string, args ...interface{}) {
	fmt.Fprintf(u.out, format, args...)
}

// Dimf writes a faint informational line (used for "no findings" lines
// in non-quiet mode).
func (u *UI) Dimf(format string, args ...interface{}) {
	u.dim.Fprintf(u.out, format, args...)
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Colors
// =============================================================================

var (
	colorAccent  = lipgloss.Color("36")  // headings, numbers
	colorOK      = lipgloss.Color("35")  // success, cache hits
	colorWarn    = lipgloss.Color("220") // warnings
	colorFail    = lipgloss.Color("167") // errors
	colorCommand = lipgloss.Color("75")  // suggested commands
	colorText    = lipgloss.Color("255") // values
	colorLabel   = lipgloss.Color("245") // keys, table headers
	colorMuted   = lipgloss.Color("240") // secondary text, borders
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleText    = lipgloss.NewStyle().Foreground(colorText)
	styleNumber  = lipgloss.NewStyle().Foreground(colorAccent)
	styleKey     = lipgloss.NewStyle().Foreground(colorLabel).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorCommand)
	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCached  = lipgloss.NewStyle().Foreground(colorOK)
	styleFresh   = lipgloss.NewStyle().Foreground(colorLabel)
)

// barRune draws bars and legend swatches.
const barRune = '█'

// =============================================================================
// Status Lines
// =============================================================================

type statusKind int

const (
	statusOK statusKind = iota
	statusFail
	statusWarn
	statusInfo
)

var statusIcons = map[statusKind]struct {
	icon  string
	style lipgloss.Style
}{
	statusOK:   {"✓", lipgloss.NewStyle().Foreground(colorOK)},
	statusFail: {"✗", lipgloss.NewStyle().Foreground(colorFail)},
	statusWarn: {"!", lipgloss.NewStyle().Foreground(colorWarn)},
	statusInfo: {"›", lipgloss.NewStyle().Foreground(colorLabel)},
}

// statusLine prefixes msg with the icon of kind. Warnings are colored
// in full.
func statusLine(kind statusKind, msg string) string {
	s := statusIcons[kind]
	if kind == statusWarn {
		msg = s.style.Render(msg)
	}
	return s.style.Render(s.icon) + " " + msg
}

func printStatus(kind statusKind, format string, args ...any) {
	fmt.Fprintln(stdout, statusLine(kind, fmt.Sprintf(format, args...)))
}

// printNote prints an indented secondary line.
func printNote(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+styleMuted.Render(fmt.Sprintf(format, args...)))
}

// =============================================================================
// Values
// =============================================================================

// printArtifact prints one written output file tagged with its format.
func printArtifact(format, path string) {
	fmt.Fprintf(stdout, "  %s %s %s\n", styleMuted.Render(fmt.Sprintf("%-4s", format)), styleMuted.Render("→"), styleText.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+styleText.Render(value))
}

// formatSpan prints a value range as "min .. max".
func formatSpan(lo, hi float64) string {
	return fmt.Sprintf("%g .. %g", lo, hi)
}

// swatch returns a bar glyph in a series color.
func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(barRune))
}

// =============================================================================
// Frame Summary
// =============================================================================

// frameSummary is the one-line report after a chart was drawn.
type frameSummary struct {
	Categories int
	Series     int
	Bars       int
	Culled     int
	Cached     bool
}

func (s frameSummary) String() string {
	parts := []string{
		fmt.Sprintf("%d categories", s.Categories),
		fmt.Sprintf("%d series", s.Series),
		fmt.Sprintf("%d bars", s.Bars),
	}
	if s.Culled > 0 {
		parts = append(parts, fmt.Sprintf("%d culled", s.Culled))
	}
	line := "  "
	for i, p := range parts {
		if i > 0 {
			line += styleMuted.Render(" · ")
		}
		line += styleMuted.Render(p)
	}
	if s.Cached {
		return line + styleMuted.Render(" · ") + styleCached.Render("cached")
	}
	return line + styleMuted.Render(" · ") + styleFresh.Render("fresh")
}

func printFrameSummary(s frameSummary) {
	fmt.Fprintln(stdout, s.String())
}

// printHint suggests a follow-up command.
func printHint(description, cmd string) {
	fmt.Fprintln(stdout, styleMuted.Render(description+":")+" "+styleCommand.Render(cmd))
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal colors. The rose accent matches the default heart palette.
var (
	colorCyan  = lipgloss.Color("36")
	colorRose  = lipgloss.Color("204")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

// Exported styles shared by the CLI, the TUI and cmd/wobble.
var (
	StyleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorRose)
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink   = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim    = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue  = lipgloss.NewStyle().Foreground(colorWhite)
	StyleError  = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// statusOut receives human-facing status lines. Stdout is left to data:
// poster bytes for "-o -", TOML for "config show", paths for "path".
var statusOut io.Writer = os.Stderr

// mark is the icon prefix of a status line.
type mark struct {
	icon  string
	style lipgloss.Style
	tint  bool // also color the message
}

var (
	markSuccess = mark{"✓", lipgloss.NewStyle().Foreground(colorGreen), false}
	markError   = mark{"✗", lipgloss.NewStyle().Foreground(colorRed), false}
	markWarning = mark{"!", lipgloss.NewStyle().Foreground(colorAmber), true}
	markInfo    = mark{"›", lipgloss.NewStyle().Foreground(colorGray), false}
)

func (m mark) line(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if m.tint {
		msg = m.style.Render(msg)
	}
	return m.style.Render(m.icon) + " " + msg
}

func status(s string) { fmt.Fprintln(statusOut, s) }

func printSuccess(format string, args ...any) { status(markSuccess.line(format, args...)) }
func printError(format string, args ...any)   { status(markError.line(format, args...)) }
func printWarning(format string, args ...any) { status(markWarning.line(format, args...)) }
func printInfo(format string, args ...any)    { status(markInfo.line(format, args...)) }

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	status("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	status("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	status(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints a one-line summary of a rendered poster, e.g.
// "seed 42 · 8 shapes · 41.2 KB · cached".
func printStats(seed uint64, shapes, bytes int, cached bool) {
	origin := StyleDim.Render("fresh")
	if cached {
		origin = markSuccess.style.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	status("  " + strings.Join([]string{
		StyleDim.Render(fmt.Sprintf("seed %d", seed)),
		StyleDim.Render(fmt.Sprintf("%d shapes", shapes)),
		StyleDim.Render(formatBytes(bytes)),
		origin,
	}, sep))
}

func formatBytes(n int) string {
	const kb, mb = 1 << 10, 1 << 20
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	}
	return fmt.Sprintf("%d B", n)
}

func printNextStep(description, cmd string) {
	status(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { status("") }

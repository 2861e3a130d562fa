package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Banner printed at the start of a run
const Banner = `productimg :: product image fetcher`

var (
	accent  = lipgloss.Color("#00B4D8")
	gold    = lipgloss.Color("#FFD166")
	green   = lipgloss.Color("#06D6A0")
	red     = lipgloss.Color("#EF476F")
	magenta = lipgloss.Color("#C77DFF")
	dim     = lipgloss.Color("#8D99AE")

	bannerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(magenta).
			Padding(0, 2)

	labelStyle     = lipgloss.NewStyle().Foreground(accent).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(gold)
	successStyle   = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(red).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(gold)
	highlightStyle = lipgloss.NewStyle().Foreground(magenta)
	dimStyle       = lipgloss.NewStyle().Foreground(dim).Faint(true)
)

// Output is where every Print helper writes
var Output io.Writer = os.Stdout

// Quiet suppresses everything except errors
var Quiet bool

// SetOutput redirects terminal output, returning the previous writer
func SetOutput(w io.Writer) io.Writer {
	prev := Output
	Output = w
	return prev
}

// Cyan renders text in the accent colour
func Cyan(text string) string { return labelStyle.Render(text) }

// Yellow renders text in the value colour
func Yellow(text string) string { return valueStyle.Render(text) }

// Green renders text in the success colour
func Green(text string) string { return successStyle.Render(text) }

// Red renders text in the error colour
func Red(text string) string { return errorStyle.Render(text) }

// Magenta renders highlighted text
func Magenta(text string) string { return highlightStyle.Render(text) }

// Dim renders secondary text
func Dim(text string) string { return dimStyle.Render(text) }

// PrintLogo prints the banner
func PrintLogo() {
	if Quiet {
		return
	}
	fmt.Fprintln(Output, bannerStyle.Render(Banner))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Output, Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if Quiet {
		return
	}
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a label and value pair
func PrintInfo(label string, value string) {
	if Quiet {
		return
	}
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if Quiet {
		return
	}
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Output, warningStyle.Render(msg))
}

// PrintHighlight prints a highlighted message
func PrintHighlight(msg string) {
	if Quiet {
		return
	}
	fmt.Fprintln(Output, Magenta(msg))
}

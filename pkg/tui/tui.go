// Package tui provides the shared terminal output helpers: lipgloss styles
// for status lines and a progress bar for batch loops.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

var (
	accent  = lipgloss.Color("#FFB000")
	muted   = lipgloss.Color("#666666")
	danger  = lipgloss.Color("#FF0000")
	success = lipgloss.Color("#00CC66")
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	dangerStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// Infof prints an informational line.
func Infof(format string, args ...interface{}) {
	fmt.Println(accentStyle.Render("▸ ") + fmt.Sprintf(format, args...))
}

// Warnf prints a warning line to stderr.
func Warnf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, dangerStyle.Render("! ")+fmt.Sprintf(format, args...))
}

// Successf prints a completion line.
func Successf(format string, args ...interface{}) {
	fmt.Println(successStyle.Render("✓ ") + fmt.Sprintf(format, args...))
}

// Mutedf prints a secondary detail line.
func Mutedf(format string, args ...interface{}) {
	fmt.Println(mutedStyle.Render("  " + fmt.Sprintf(format, args...)))
}

// NewProgress creates a progress bar for a batch of n items.
func NewProgress(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Logger adapts the styled output to the engine's logger interface.
type Logger struct{}

// Infof implements split.Logger.
func (Logger) Infof(format string, args ...interface{}) {
	Infof(format, args...)
}

// Warnf implements split.Logger.
func (Logger) Warnf(format string, args ...interface{}) {
	Warnf(format, args...)
}

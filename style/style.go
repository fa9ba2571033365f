// Package style wraps lipgloss with small helpers for terminal output.
package style

import (
	"github.com/charmbracelet/lipgloss"
)

// New returns an empty lipgloss.Style to build on.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg returns a function that renders a string in the given foreground color.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains pre-configured lipgloss styles for the ask view.
type Styles struct {
	// Title style for the header.
	Title lipgloss.Style

	// Question style for the echoed question.
	Question lipgloss.Style

	// Answer style for generated answer text.
	Answer lipgloss.Style

	// Source style for retrieved complaint excerpts.
	Source lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Warning style for degraded answers.
	Warning lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// InputField style for the question input.
	InputField lipgloss.Style
}

// DefaultStyles returns the default style set.
func DefaultStyles() *Styles {
	var (
		primary = lipgloss.Color("#7C3AED") // Purple
		text    = lipgloss.Color("#CDD6F4") // Light gray
		muted   = lipgloss.Color("#6C7086") // Medium gray
		warning = lipgloss.Color("#F9E2AF") // Yellow
		danger  = lipgloss.Color("#F38BA8") // Red
		border  = lipgloss.Color("#45475A") // Border gray
	)

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		Question: lipgloss.NewStyle().
			Foreground(text).
			Bold(true),
		Answer: lipgloss.NewStyle().
			Foreground(text),
		Source: lipgloss.NewStyle().
			Foreground(muted).
			PaddingLeft(2),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Warning: lipgloss.NewStyle().
			Foreground(warning),
		Error: lipgloss.NewStyle().
			Foreground(danger),
		InputField: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}

package main

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all command output.
const (
	// ColorPrimary is purple, for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray, for subtitles and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green, for available routes and passing checks.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red, for failures.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber, for degraded states such as a missing GPU.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue, for framework names and keys.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// KeyStyle is for framework names, keys and column labels.
	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)

// cell pads s to width before styling, so ANSI codes do not break alignment.
func cell(style lipgloss.Style, s string, width int) string {
	return style.Render(lipgloss.NewStyle().Width(width).Render(s))
}

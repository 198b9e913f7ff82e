package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rileyhilliard/expml/internal/storage"
)

// Semantic colors for status indication. ANSI codes so the CLI output
// follows the user's terminal palette.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }

// StatusColor maps a run status to its color.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case storage.StatusRunning:
		return ColorInfo
	case storage.StatusFinished:
		return ColorSuccess
	case storage.StatusFailed, storage.StatusCrashed:
		return ColorError
	default:
		return ColorMuted
	}
}

// DisableColors switches all lipgloss output to plain text.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

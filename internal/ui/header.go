package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // Version string (e.g., "v0.4.0")
	Tagline string // Optional tagline
	Dir     string // Optional runs directory to display
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders the title block printed above CLI listings.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	versionStyle := lipgloss.NewStyle().Foreground(ColorInfo)

	var output strings.Builder

	output.WriteString(titleStyle.Render("expml"))
	if info.Version != "" {
		output.WriteString(" ")
		output.WriteString(versionStyle.Render(info.Version))
	}
	output.WriteString("\n")

	if info.Tagline != "" {
		output.WriteString(info.Tagline)
		output.WriteString("\n")
	}
	if info.Dir != "" {
		output.WriteString(MutedStyle().Render(info.Dir))
		output.WriteString("\n")
	}

	output.WriteString(MutedStyle().Render(strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")

	return output.String()
}

// PrintHeader writes the styled header to w.
func PrintHeader(w io.Writer, info HeaderInfo) {
	fmt.Fprint(w, RenderHeader(info))
}

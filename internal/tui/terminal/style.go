package terminal

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Style names a theme slot plus attribute flags. Widgets only ever refer to
// styles symbolically; the Theme resolves them to real colors once at startup.
type Style uint16

// Theme slots.
const (
	Normal Style = iota
	Dim
	Bright
	Selected
	Error
	Success
	Warning
	Info
	Header
	HeaderDim
	Border
	BorderActive
	Background
	GraphAxis
	GraphLine
	MetricValue
	MetricLabel
	StatusBar
	HelpText
	Chart1
	Chart2
	Chart3
	Chart4
	Chart5
	Chart6
	Chart7
	Chart8
	Chart9
	Chart10

	slotCount
)

// ChartColors is the number of distinct chart series colors.
const ChartColors = int(Chart10-Chart1) + 1

const (
	slotMask Style = 0xff
	boldFlag Style = 1 << 8
)

// Slot returns the style with attribute flags cleared.
func (s Style) Slot() Style { return s & slotMask }

// Bold returns a copy of the style with the bold attribute set.
func (s Style) Bold() Style { return s | boldFlag }

// IsBold reports whether the bold attribute is set.
func (s Style) IsBold() bool { return s&boldFlag != 0 }

// Chart returns the series color for palette index i, cycling past the end.
func Chart(i int) Style {
	if i < 0 {
		i = -i
	}
	return Chart1 + Style(i%ChartColors)
}

// Palette colors. Each entry carries its own 16-color fallback.
var (
	colorHeader       = lipgloss.CompleteColor{TrueColor: "#F3C62F", ANSI256: "#F3C62F", ANSI: "2"}
	colorBorderActive = lipgloss.CompleteColor{TrueColor: "#49D3F2", ANSI256: "#49D3F2", ANSI: "6"}
	colorGraphLine    = lipgloss.CompleteColor{TrueColor: "#B7E9C1", ANSI256: "#B7E9C1", ANSI: "6"}

	chartPalette = [ChartColors]lipgloss.CompleteColor{
		{TrueColor: "#6f2dbd", ANSI256: "#6f2dbd", ANSI: "5"},
		{TrueColor: "#005f73", ANSI256: "#005f73", ANSI: "6"},
		{TrueColor: "#0a9396", ANSI256: "#0a9396", ANSI: "6"},
		{TrueColor: "#94d2bd", ANSI256: "#94d2bd", ANSI: "7"},
		{TrueColor: "#e9d8a6", ANSI256: "#e9d8a6", ANSI: "3"},
		{TrueColor: "#ee9b00", ANSI256: "#ee9b00", ANSI: "3"},
		{TrueColor: "#ca6702", ANSI256: "#ca6702", ANSI: "1"},
		{TrueColor: "#bb3e03", ANSI256: "#bb3e03", ANSI: "1"},
		{TrueColor: "#ae2012", ANSI256: "#ae2012", ANSI: "1"},
		{TrueColor: "#9b2226", ANSI256: "#9b2226", ANSI: "5"},
	}
)

// Theme maps style slots to lipgloss styles for one color profile. It owns
// its own renderer so building a theme never touches global terminal state.
type Theme struct {
	profile termenv.Profile
	styles  [slotCount]lipgloss.Style
	bold    [slotCount]lipgloss.Style
}

// NewTheme builds the dark scheme for profile. termenv.Ascii selects the
// monochrome scheme; lipgloss drops every escape sequence for that profile,
// so the result is plain text.
func NewTheme(profile termenv.Profile) *Theme {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)

	t := &Theme{profile: profile}
	if profile == termenv.Ascii {
		t.monochrome(r)
	} else {
		t.dark(r)
	}
	for i := range t.styles {
		t.bold[i] = t.styles[i].Bold(true)
	}
	return t
}

func (t *Theme) dark(r *lipgloss.Renderer) {
	base := r.NewStyle()
	white := lipgloss.Color("7")

	t.styles[Normal] = base.Foreground(white)
	t.styles[Dim] = base.Foreground(white).Faint(true)
	t.styles[Bright] = base.Foreground(white).Bold(true)
	t.styles[Selected] = base.Reverse(true)
	t.styles[Error] = base.Foreground(lipgloss.Color("1")).Bold(true)
	t.styles[Success] = base.Foreground(lipgloss.Color("2"))
	t.styles[Warning] = base.Foreground(lipgloss.Color("3"))
	t.styles[Info] = base.Foreground(white)
	t.styles[Header] = base.Foreground(colorHeader).Bold(true)
	t.styles[HeaderDim] = base.Foreground(colorHeader).Faint(true)
	t.styles[Border] = base.Foreground(white).Faint(true)
	t.styles[BorderActive] = base.Foreground(colorBorderActive)
	t.styles[Background] = base
	t.styles[GraphAxis] = base.Foreground(white).Faint(true)
	t.styles[GraphLine] = base.Foreground(colorGraphLine)
	t.styles[MetricValue] = base.Foreground(white).Bold(true)
	t.styles[MetricLabel] = base.Foreground(white).Faint(true)
	t.styles[StatusBar] = base.Foreground(lipgloss.Color("0")).Background(white)
	t.styles[HelpText] = base.Foreground(white).Faint(true)
	for i, c := range chartPalette {
		t.styles[Chart1+Style(i)] = base.Foreground(c)
	}
}

func (t *Theme) monochrome(r *lipgloss.Renderer) {
	base := r.NewStyle()
	for i := range t.styles {
		t.styles[i] = base
	}
	t.styles[Dim] = base.Faint(true)
	t.styles[Bright] = base.Bold(true)
	t.styles[Selected] = base.Reverse(true)
	t.styles[Error] = base.Bold(true)
	t.styles[Header] = base.Bold(true)
	t.styles[HeaderDim] = base.Faint(true)
	t.styles[Border] = base.Faint(true)
	t.styles[BorderActive] = base.Bold(true)
	t.styles[MetricValue] = base.Bold(true)
	t.styles[StatusBar] = base.Reverse(true)
}

// Profile returns the color profile the theme was built for.
func (t *Theme) Profile() termenv.Profile {
	return t.profile
}

// Render applies style s to text.
func (t *Theme) Render(s Style, text string) string {
	slot := s.Slot()
	if slot >= slotCount {
		slot = Normal
	}
	if s.IsBold() {
		return t.bold[slot].Render(text)
	}
	return t.styles[slot].Render(text)
}

// ProfileFor picks the color profile for a display.color setting. "auto"
// trusts the detected profile (which honors NO_COLOR and CLICOLOR_FORCE),
// "never" is monochrome, and "always" upgrades a colorless detection to ANSI.
func ProfileFor(mode string, detected termenv.Profile) termenv.Profile {
	switch mode {
	case "never":
		return termenv.Ascii
	case "always":
		if detected == termenv.Ascii {
			return termenv.ANSI
		}
	}
	return detected
}

package tui

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

// Function bar limits.
const (
	MaxFunctionKeys = 15
	MaxContextLen   = 256
)

// FunctionBar is the status line above the bottom row: a context string on
// the left and key hints packed from the right.
type FunctionBar struct {
	keys    []string
	labels  []string
	context string
}

// NewFunctionBar pairs keys with labels. Extra entries beyond the shorter
// slice or MaxFunctionKeys are dropped.
func NewFunctionBar(keys, labels []string) *FunctionBar {
	n := min(len(keys), len(labels), MaxFunctionKeys)
	return &FunctionBar{
		keys:   append([]string(nil), keys[:n]...),
		labels: append([]string(nil), labels[:n]...),
	}
}

// SetContext formats the left-hand text, keeping at most MaxContextLen runes.
func (f *FunctionBar) SetContext(format string, args ...interface{}) {
	if f == nil {
		return
	}
	ctx := []rune(fmt.Sprintf(format, args...))
	if len(ctx) > MaxContextLen {
		ctx = ctx[:MaxContextLen]
	}
	f.context = string(ctx)
}

// Context returns the left-hand text.
func (f *FunctionBar) Context() string {
	if f == nil {
		return ""
	}
	return f.context
}

// Draw paints the bar on row y across width columns. Key hints that would
// run into the context are dropped, leftmost first.
func (f *FunctionBar) Draw(s *terminal.Surface, y, width int) {
	if f == nil {
		return
	}
	st := terminal.StatusBar
	s.HLine(y, 0, ' ', width, st)
	s.Print(y, 1, f.context, st)

	ctxW := runewidth.StringWidth(f.context)
	x := width - 1
	for i := len(f.keys) - 1; i >= 0; i-- {
		kw := runewidth.StringWidth(f.keys[i])
		x -= kw + runewidth.StringWidth(f.labels[i]) + 2
		if x < ctxW+3 {
			break
		}
		s.Print(y, x, f.keys[i], st.Bold())
		s.Print(y, x+kw, ":"+f.labels[i], st)
		x -= 2
	}
}

// Subtitle is the fixed second header line.
const Subtitle = "terminal-based ML experiment tracker"

// Header is the boxed banner on rows 0-3.
type Header struct {
	App     string
	Version string
	Title   string
	Status  string
	Runtime float64
}

// headerHeight is the number of rows the header occupies.
const headerHeight = 4

// Draw paints the header across width columns.
func (h *Header) Draw(s *terminal.Surface, width int) {
	if h == nil || width < 2 {
		return
	}
	border := terminal.GraphLine
	s.Fill(1, 1, 2, width-2, ' ', terminal.Normal)
	s.Box(0, 0, headerHeight, width, border)

	name := h.App
	if h.Version != "" {
		name += " v" + h.Version
	}
	s.Print(1, 2, name, border.Bold())

	if h.Title != "" {
		tw := runewidth.StringWidth(h.Title)
		s.Print(1, max(2, width-tw-3), h.Title, terminal.Normal)
	}

	var info string
	switch {
	case h.Status != "" && h.Runtime > 0:
		info = fmt.Sprintf("status: %s | runtime: %.0fs", h.Status, h.Runtime)
	case h.Status != "":
		info = "status: " + h.Status
	case h.Runtime > 0:
		info = fmt.Sprintf("runtime: %.0fs", h.Runtime)
	}

	// The run state wins over the subtitle when both don't fit.
	subMax := width - 4
	if info != "" {
		infoX := max(2, width-runewidth.StringWidth(info)-3)
		s.Print(2, infoX, info, terminal.Dim)
		subMax = infoX - 3
	}
	s.PrintMax(2, 2, Subtitle, subMax, terminal.Dim)
}

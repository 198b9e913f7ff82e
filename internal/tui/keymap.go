package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// Keymap holds the dashboard key bindings. Matching works on terminal.Key
// through its bubbletea-style String form.
type Keymap struct {
	SwitchPanel key.Binding
	Scroll      key.Binding
	Page        key.Binding
	Jump        key.Binding
	Copy        key.Binding

	Help   key.Binding
	Quit   key.Binding
	Redraw key.Binding
}

// DefaultKeymap returns the standard bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		SwitchPanel: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("TAB / Arrows", "Switch Panels"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("down", "up", "j", "k"),
			key.WithHelp("Down / Up", "Scroll Down/Up"),
		),
		Page: key.NewBinding(
			key.WithKeys("pgup", "pgdown"),
			key.WithHelp("PgUp / PgDn", "Scroll Page"),
		),
		Jump: key.NewBinding(
			key.WithKeys("home", "end", "g", "G"),
			key.WithHelp("Home / End", "Jump to Top/Bottom"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy Value"),
		),
		Help: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "Help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Redraw: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("Ctrl+L", "Force Redraw"),
		),
	}
}

// HelpSection is one titled group of the help overlay.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// Sections groups the bindings for the help overlay.
func (k Keymap) Sections() []HelpSection {
	return []HelpSection{
		{Title: "Navigation", Bindings: []key.Binding{k.SwitchPanel, k.Scroll, k.Page, k.Jump}},
		{Title: "General", Bindings: []key.Binding{k.Help, k.Quit, k.Redraw, k.Copy}},
	}
}

package terminal

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Key is one input event. Printable keys are their rune value; special keys
// are negative.
type Key int

// Special keys.
const (
	KeyNone Key = -(iota + 1)
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPgUp
	KeyPgDown
	KeyHome
	KeyEnd
	KeyTab
	KeyShiftTab
	KeyEnter
	KeyEsc
	KeyCtrlC
	KeyCtrlL
	KeyCtrlZ
	// KeyResize is delivered after the terminal changes size.
	KeyResize
)

var keyNames = map[Key]string{
	KeyNone:     "none",
	KeyUp:       "up",
	KeyDown:     "down",
	KeyLeft:     "left",
	KeyRight:    "right",
	KeyPgUp:     "pgup",
	KeyPgDown:   "pgdown",
	KeyHome:     "home",
	KeyEnd:      "end",
	KeyTab:      "tab",
	KeyShiftTab: "shift+tab",
	KeyEnter:    "enter",
	KeyEsc:      "esc",
	KeyCtrlC:    "ctrl+c",
	KeyCtrlL:    "ctrl+l",
	KeyCtrlZ:    "ctrl+z",
	KeyResize:   "resize",
}

// String returns the key name in bubbletea's notation ("up", "ctrl+l", "q").
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	if k == ' ' {
		return " "
	}
	if k > 0 {
		return string(rune(k))
	}
	return "unknown"
}

// Rune returns the printable rune for k, if it is one.
func (k Key) Rune() (rune, bool) {
	if k > 0 {
		return rune(k), true
	}
	return 0, false
}

var teaKeys = map[tea.KeyType]Key{
	tea.KeyUp:       KeyUp,
	tea.KeyDown:     KeyDown,
	tea.KeyLeft:     KeyLeft,
	tea.KeyRight:    KeyRight,
	tea.KeyPgUp:     KeyPgUp,
	tea.KeyPgDown:   KeyPgDown,
	tea.KeyHome:     KeyHome,
	tea.KeyEnd:      KeyEnd,
	tea.KeyTab:      KeyTab,
	tea.KeyShiftTab: KeyShiftTab,
	tea.KeyEnter:    KeyEnter,
	tea.KeyEsc:      KeyEsc,
	tea.KeyCtrlC:    KeyCtrlC,
	tea.KeyCtrlL:    KeyCtrlL,
	tea.KeyCtrlZ:    KeyCtrlZ,
	tea.KeySpace:    Key(' '),
}

// FromKeyMsg translates a bubbletea key message. Alt-modified and
// multi-rune (pasted) input maps to KeyNone.
func FromKeyMsg(msg tea.KeyMsg) Key {
	if msg.Alt || msg.Paste {
		return KeyNone
	}
	if msg.Type == tea.KeyRunes {
		if len(msg.Runes) == 1 {
			return Key(msg.Runes[0])
		}
		return KeyNone
	}
	if k, ok := teaKeys[msg.Type]; ok {
		return k
	}
	return KeyNone
}

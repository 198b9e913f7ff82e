// Package tui is the dashboard rendering engine: scrollable panels, the
// metric card grid, and the screen manager that lays them out and runs the
// input/refresh loop.
package tui

import (
	"github.com/mattn/go-runewidth"

	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

const (
	initialCapacity = 16
	// hScrollStep is how far left/right move the horizontal scroll.
	hScrollStep = 5
)

// Result is a bitmask returned by key handlers.
type Result int

const (
	// Handled means the key was consumed.
	Handled Result = 1 << iota
	// Ignored lets the panel's built-in bindings see the key.
	Ignored
	// Unconsumed reports the key back to the owner without trying the
	// built-in bindings, so the screen manager can act on it.
	Unconsumed
	// Quit asks the screen manager to exit.
	Quit
	// Redraw asks for a full repaint.
	Redraw
	// Relayout asks for the panel widths to be recomputed.
	Relayout
)

// Has reports whether all bits of f are set.
func (r Result) Has(f Result) bool {
	return r&f == f
}

// Item is one entry of a Panel.
type Item struct {
	Text string
	Data any
}

// ItemDrawer renders one item into the h rows starting at (y, x).
type ItemDrawer interface {
	DrawItem(s *terminal.Surface, p *Panel, item Item, index, y, x, w, h int, selected bool)
}

// KeyHandler gets first look at every key a panel receives.
type KeyHandler interface {
	HandleKey(p *Panel, key terminal.Key) Result
}

// ItemCleaner releases whatever an item's Data holds when the item is removed.
type ItemCleaner interface {
	CleanupItem(item Item)
}

// Panel is a scrollable, focusable list. The zero value is not usable; use
// NewPanel. Every method is a no-op on a nil *Panel.
type Panel struct {
	x, y, w, h int
	header     string

	items      []Item
	selected   int
	scrollV    int
	scrollH    int
	itemHeight int

	dirty     bool
	focus     bool
	separator bool

	drawer  ItemDrawer
	keys    KeyHandler
	cleaner ItemCleaner
}

// NewPanel creates an empty panel with the given header. An empty header
// draws no header row.
func NewPanel(header string) *Panel {
	return &Panel{
		header:     header,
		items:      make([]Item, 0, initialCapacity),
		itemHeight: 1,
		dirty:      true,
	}
}

// SetDrawer installs a custom item renderer.
func (p *Panel) SetDrawer(d ItemDrawer) {
	if p == nil {
		return
	}
	p.drawer = d
	p.dirty = true
}

// SetKeyHandler installs a handler that sees keys before the built-in bindings.
func (p *Panel) SetKeyHandler(h KeyHandler) {
	if p == nil {
		return
	}
	p.keys = h
}

// SetCleaner installs the hook called for every removed item.
func (p *Panel) SetCleaner(c ItemCleaner) {
	if p == nil {
		return
	}
	p.cleaner = c
}

// SetHeader replaces the header text.
func (p *Panel) SetHeader(header string) {
	if p == nil {
		return
	}
	p.header = header
	p.dirty = true
}

// Header returns the header text.
func (p *Panel) Header() string {
	if p == nil {
		return ""
	}
	return p.header
}

// Move sets the top-left corner.
func (p *Panel) Move(x, y int) {
	if p == nil {
		return
	}
	p.x, p.y = x, y
	p.dirty = true
}

// Resize sets the panel size.
func (p *Panel) Resize(w, h int) {
	if p == nil {
		return
	}
	p.w, p.h = w, h
	p.dirty = true
}

// Bounds returns position and size.
func (p *Panel) Bounds() (x, y, w, h int) {
	if p == nil {
		return 0, 0, 0, 0
	}
	return p.x, p.y, p.w, p.h
}

// SetItemHeight sets the rows per item. Values below 1 are ignored.
func (p *Panel) SetItemHeight(h int) {
	if p == nil || h < 1 {
		return
	}
	p.itemHeight = h
	p.dirty = true
}

// ItemHeight returns the rows per item.
func (p *Panel) ItemHeight() int {
	if p == nil {
		return 0
	}
	return p.itemHeight
}

// SetDrawSeparator controls the right-hand vertical separator.
func (p *Panel) SetDrawSeparator(draw bool) {
	if p == nil {
		return
	}
	p.separator = draw
	p.dirty = true
}

// SetFocus toggles focus. Focus changes header and border styling.
func (p *Panel) SetFocus(focus bool) {
	if p == nil {
		return
	}
	p.focus = focus
	p.dirty = true
}

// HasFocus reports whether the panel is focused.
func (p *Panel) HasFocus() bool {
	return p != nil && p.focus
}

// Invalidate marks the panel for redraw on the next Draw.
func (p *Panel) Invalidate() {
	if p == nil {
		return
	}
	p.dirty = true
}

// Dirty reports whether the next Draw will repaint.
func (p *Panel) Dirty() bool {
	return p != nil && p.dirty
}

// grow doubles the backing array when it is full.
func (p *Panel) grow() {
	if len(p.items) < cap(p.items) {
		return
	}
	n := 2 * cap(p.items)
	if n < initialCapacity {
		n = initialCapacity
	}
	items := make([]Item, len(p.items), n)
	copy(items, p.items)
	p.items = items
}

// AddItem appends an item and returns its index, or -1 on a nil panel.
func (p *Panel) AddItem(text string, data any) int {
	if p == nil {
		return -1
	}
	p.grow()
	p.items = append(p.items, Item{Text: text, Data: data})
	p.dirty = true
	return len(p.items) - 1
}

// InsertItem inserts before index i. An index past the end appends; a
// negative index is ignored and returns -1.
func (p *Panel) InsertItem(i int, text string, data any) int {
	if p == nil || i < 0 {
		return -1
	}
	if i >= len(p.items) {
		return p.AddItem(text, data)
	}
	p.grow()
	p.items = append(p.items, Item{})
	copy(p.items[i+1:], p.items[i:])
	p.items[i] = Item{Text: text, Data: data}
	p.dirty = true
	return i
}

// RemoveItem deletes the item at i and reports whether anything was removed.
func (p *Panel) RemoveItem(i int) bool {
	if p == nil || i < 0 || i >= len(p.items) {
		return false
	}
	if p.cleaner != nil {
		p.cleaner.CleanupItem(p.items[i])
	}
	copy(p.items[i:], p.items[i+1:])
	p.items[len(p.items)-1] = Item{}
	p.items = p.items[:len(p.items)-1]

	p.clampSelection()
	p.dirty = true
	return true
}

// Clear removes every item and resets selection and scrolling.
func (p *Panel) Clear() {
	if p == nil {
		return
	}
	if p.cleaner != nil {
		for _, it := range p.items {
			p.cleaner.CleanupItem(it)
		}
	}
	for i := range p.items {
		p.items[i] = Item{}
	}
	p.items = p.items[:0]
	p.selected = 0
	p.scrollV = 0
	p.scrollH = 0
	p.dirty = true
}

// Len returns the number of items.
func (p *Panel) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Item returns the item at i.
func (p *Panel) Item(i int) (Item, bool) {
	if p == nil || i < 0 || i >= len(p.items) {
		return Item{}, false
	}
	return p.items[i], true
}

// Selected returns the selected index, 0 for an empty panel.
func (p *Panel) Selected() int {
	if p == nil {
		return 0
	}
	return p.selected
}

// SelectedItem returns the selected item, if any.
func (p *Panel) SelectedItem() (Item, bool) {
	if p == nil {
		return Item{}, false
	}
	return p.Item(p.selected)
}

// SetSelected moves the selection, clamped to the item range.
func (p *Panel) SetSelected(i int) {
	if p == nil {
		return
	}
	if len(p.items) == 0 {
		p.selected = 0
		return
	}
	p.selected = clampInt(i, 0, len(p.items)-1)
	p.dirty = true
}

// ScrollH returns the horizontal scroll offset.
func (p *Panel) ScrollH() int {
	if p == nil {
		return 0
	}
	return p.scrollH
}

func (p *Panel) clampSelection() {
	if len(p.items) == 0 {
		p.selected = 0
		return
	}
	p.selected = clampInt(p.selected, 0, len(p.items)-1)
}

// avail is the number of rows below the header and border.
func (p *Panel) avail() int {
	a := p.h - 1
	if p.header != "" {
		a--
	}
	return a
}

// visible is how many whole items fit, at least one.
func (p *Panel) visible() int {
	v := p.avail() / p.itemHeight
	if v < 1 {
		v = 1
	}
	return v
}

// Draw paints the panel if it is dirty or force is set.
func (p *Panel) Draw(s *terminal.Surface, force bool) {
	if p == nil || s == nil || (!p.dirty && !force) {
		return
	}
	if p.w <= 0 || p.h <= 0 {
		p.dirty = false
		return
	}

	s.Fill(p.y, p.x, p.h, p.w, ' ', terminal.Normal)

	row := p.y
	if p.header != "" {
		st := terminal.Dim
		if p.focus {
			st = terminal.Header
		}
		s.HLine(row, p.x, ' ', p.w, st)
		s.PrintMax(row, p.x, p.header, p.w-1, st)
		row++
	}

	border := terminal.Border
	if p.focus {
		border = terminal.BorderActive
	}
	s.HLine(row, p.x, terminal.RuneHLine, p.w-1, border)
	borderRow := row
	row++

	avail := p.avail()
	n := len(p.items)
	visible := p.visible()

	if p.selected < p.scrollV {
		p.scrollV = p.selected
	} else if p.selected >= p.scrollV+visible {
		p.scrollV = p.selected - visible + 1
	}
	p.scrollV = clampInt(p.scrollV, 0, max(0, n-visible))

	first := p.scrollV
	last := min(first+visible, n)
	contentW := p.w - 2

	for i := first; i < last; i++ {
		y := row + (i-first)*p.itemHeight
		sel := i == p.selected
		if p.drawer != nil {
			p.drawer.DrawItem(s, p, p.items[i], i, y, p.x, contentW, p.itemHeight, sel)
		} else {
			p.drawDefault(s, p.items[i], y, contentW, sel)
		}
	}

	if n > avail && avail > 0 {
		pos := p.scrollV * (avail - 1) / max(1, n-1)
		s.Put(row+pos, p.x+p.w-2, terminal.RuneCheckerB, terminal.Border)
	}

	if p.separator {
		s.VLine(p.y, p.x+p.w-1, terminal.RuneVLine, p.h, terminal.Border)
		joint := terminal.RuneTTee
		if borderRow > p.y {
			joint = terminal.RuneCross
		}
		s.Put(borderRow, p.x+p.w-1, joint, terminal.Border)
	}

	p.dirty = false
}

func (p *Panel) drawDefault(s *terminal.Surface, it Item, y, w int, selected bool) {
	st := terminal.Normal
	if selected {
		st = terminal.Dim
		if p.focus {
			st = terminal.Selected
		}
	}
	s.HLine(y, p.x, ' ', w, st)

	text := it.Text
	if p.scrollH > 0 {
		// Skip scrollH columns.
		text = runewidth.TruncateLeft(text, p.scrollH, "")
	}
	s.PrintMax(y, p.x, text, w, st)
}

// OnKey applies a key and reports whether it was consumed. The key handler
// runs first; built-in bindings apply only if it returns Ignored.
func (p *Panel) OnKey(key terminal.Key) bool {
	if p == nil {
		return false
	}
	if p.keys != nil {
		r := p.keys.HandleKey(p, key)
		if r.Has(Handled) {
			return true
		}
		if r.Has(Unconsumed) {
			return false
		}
	}

	n := len(p.items)
	if n == 0 {
		return false
	}

	oldSel, oldScroll, oldH := p.selected, p.scrollV, p.scrollH
	page := p.visible()

	switch key {
	case terminal.KeyUp, 'k':
		p.selected--
	case terminal.KeyDown, 'j':
		p.selected++
	case terminal.KeyPgUp:
		p.selected -= page
		p.scrollV -= page
	case terminal.KeyPgDown:
		p.selected += page
		p.scrollV += page
	case terminal.KeyHome, 'g':
		p.selected = 0
	case terminal.KeyEnd, 'G':
		p.selected = n - 1
	case terminal.KeyLeft, 'h':
		p.scrollH = max(0, p.scrollH-hScrollStep)
	case terminal.KeyRight, 'l':
		p.scrollH += hScrollStep
	default:
		return false
	}

	p.selected = clampInt(p.selected, 0, n-1)
	p.scrollV = clampInt(p.scrollV, 0, max(0, n-page))

	if p.selected != oldSel || p.scrollV != oldScroll || p.scrollH != oldH {
		p.dirty = true
	}
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

// Layout constants. Panels start below the header and hint lines and stop
// above the function bar.
const (
	PanelLeft = 1
	PanelTop  = 8

	DefaultMainMinWidth    = 30
	DefaultSidebarMinWidth = 20
	DefaultRefresh         = time.Second

	helpWidth  = 50
	helpHeight = 16
	hintRow    = 4
)

// Widget is anything the screen manager can lay out. *Panel, *MetricsPanel
// and *KVPanel all implement it.
type Widget interface {
	Move(x, y int)
	Resize(w, h int)
	SetDrawSeparator(draw bool)
	SetFocus(focus bool)
	Invalidate()
	Draw(s *terminal.Surface, force bool)
	OnKey(key terminal.Key) bool
}

// Driver runs an App until it is done or ctx is cancelled.
type Driver func(ctx context.Context, app terminal.App) error

type layout struct {
	widget Widget
	width  int
}

// ScreenManager composes widgets into a single row, routes keys, runs the
// refresh timer and draws the chrome around the panels. It is not safe for
// concurrent use except for RequestRefresh.
type ScreenManager struct {
	layouts []layout
	focused int

	width, height int
	minDynamic    int
	minFixed      int

	showHelp bool
	quit     bool
	hints    bool
	force    bool
	clear    bool

	interval    time.Duration
	lastRefresh time.Time
	refresh     func()
	refreshDue  atomic.Bool

	header Header
	bar    *FunctionBar
	keys   Keymap
}

// NewScreenManager creates a manager with the given header title. A
// non-positive interval defaults to one second.
func NewScreenManager(title string, interval time.Duration) *ScreenManager {
	if interval <= 0 {
		interval = DefaultRefresh
	}
	return &ScreenManager{
		minDynamic:  DefaultMainMinWidth,
		minFixed:    DefaultSidebarMinWidth,
		hints:       true,
		force:       true,
		interval:    interval,
		lastRefresh: time.Now(),
		header:      Header{App: "expml", Title: title},
		keys:        DefaultKeymap(),
	}
}

// SetMinWidths sets the minimum width of flexible panels and the hard
// minimum of fixed ones.
func (sm *ScreenManager) SetMinWidths(minDynamic, minFixed int) {
	if minDynamic > 0 {
		sm.minDynamic = minDynamic
	}
	if minFixed > 0 {
		sm.minFixed = minFixed
	}
	sm.relayout()
}

// SetHints toggles the hint lines under the header.
func (sm *ScreenManager) SetHints(on bool) {
	sm.hints = on
	sm.force = true
}

// SetVersion sets the version shown next to the app name.
func (sm *ScreenManager) SetVersion(v string) {
	sm.header.Version = v
}

// SetKeymap replaces the key bindings.
func (sm *ScreenManager) SetKeymap(k Keymap) {
	sm.keys = k
}

// AddPanel appends a widget. A width of zero or less makes it flexible.
// The first panel added takes focus.
func (sm *ScreenManager) AddPanel(w Widget, width int) {
	if w == nil {
		return
	}
	sm.layouts = append(sm.layouts, layout{widget: w, width: width})
	w.SetFocus(len(sm.layouts)-1 == sm.focused)
	sm.relayout()
}

// RemovePanel removes and returns the widget at i.
func (sm *ScreenManager) RemovePanel(i int) Widget {
	if i < 0 || i >= len(sm.layouts) {
		return nil
	}
	w := sm.layouts[i].widget
	sm.layouts = append(sm.layouts[:i], sm.layouts[i+1:]...)

	if i < sm.focused {
		sm.focused--
	}
	if sm.focused >= len(sm.layouts) && len(sm.layouts) > 0 {
		sm.focused = len(sm.layouts) - 1
	}
	for j, l := range sm.layouts {
		l.widget.SetFocus(j == sm.focused)
	}
	sm.relayout()
	sm.force = true
	return w
}

// Panel returns the widget at i.
func (sm *ScreenManager) Panel(i int) Widget {
	if i < 0 || i >= len(sm.layouts) {
		return nil
	}
	return sm.layouts[i].widget
}

// Len returns the number of panels.
func (sm *ScreenManager) Len() int {
	return len(sm.layouts)
}

// Focused returns the index of the focused panel, or -1 with no panels.
func (sm *ScreenManager) Focused() int {
	if len(sm.layouts) == 0 {
		return -1
	}
	return sm.focused
}

// SetFocus moves focus to panel i and reports whether i was valid.
func (sm *ScreenManager) SetFocus(i int) bool {
	if i < 0 || i >= len(sm.layouts) {
		return false
	}
	sm.layouts[sm.focused].widget.SetFocus(false)
	sm.focused = i
	sm.layouts[i].widget.SetFocus(true)
	return true
}

// SetFunctionBar sets the bar drawn above the bottom row.
func (sm *ScreenManager) SetFunctionBar(fb *FunctionBar) {
	sm.bar = fb
}

// FunctionBar returns the current function bar.
func (sm *ScreenManager) FunctionBar() *FunctionBar {
	return sm.bar
}

// SetRefreshFunc sets the periodic data reload callback. nil disables it;
// the callback may call this itself to stop future refreshes.
func (sm *ScreenManager) SetRefreshFunc(fn func()) {
	sm.refresh = fn
}

// RequestRefresh makes the next Tick refresh regardless of the interval.
// It is safe to call from any goroutine.
func (sm *ScreenManager) RequestRefresh() {
	sm.refreshDue.Store(true)
}

// SetHeaderText sets the right-aligned header title.
func (sm *ScreenManager) SetHeaderText(title string) {
	sm.header.Title = title
}

// SetStatus sets the header status.
func (sm *ScreenManager) SetStatus(status string) {
	sm.header.Status = status
}

// SetRuntime sets the header runtime in seconds.
func (sm *ScreenManager) SetRuntime(seconds float64) {
	sm.header.Runtime = seconds
}

// ForceRedraw clears the screen and repaints everything on the next Draw.
func (sm *ScreenManager) ForceRedraw() {
	sm.force = true
	sm.clear = true
}

// Quit stops the loop after the current step.
func (sm *ScreenManager) Quit() {
	sm.quit = true
}

// HelpVisible reports whether the help overlay is showing.
func (sm *ScreenManager) HelpVisible() bool {
	return sm.showHelp
}

// Resize records the terminal size and recomputes the layout.
func (sm *ScreenManager) Resize(w, h int) {
	sm.width, sm.height = w, h
	sm.relayout()
	sm.ForceRedraw()
}

// ComputeWidths splits total columns among panels. Positive requests are
// fixed widths, the rest share what is left. Fixed panels shrink
// proportionally (never below minFixed) when flexible panels would get
// less than minDynamic, and the last flexible panel absorbs the rounding.
// Without flexible panels the last panel absorbs the difference. The result
// sums to total whenever total covers minFixed per fixed panel plus
// minDynamic.
func ComputeWidths(requests []int, total, minDynamic, minFixed int) []int {
	widths := make([]int, len(requests))
	if len(requests) == 0 {
		return widths
	}
	total = max(0, total)

	var fixed []int
	fixedSum, dynamic, lastDynamic := 0, 0, -1
	for i, r := range requests {
		if r > 0 {
			fixed = append(fixed, i)
			fixedSum += r
		} else {
			dynamic++
			lastDynamic = i
		}
	}

	ratio := 1.0
	switch {
	case dynamic > 0 && fixedSum > 0 && total-fixedSum < minDynamic:
		ratio = float64(total-minDynamic) / float64(fixedSum)
	case dynamic == 0 && fixedSum > total:
		ratio = float64(total) / float64(fixedSum)
	}

	used := 0
	for _, i := range fixed {
		w := int(float64(requests[i]) * ratio)
		w = min(max(w, minFixed), total)
		widths[i] = w
		used += w
	}

	budget := total
	if dynamic > 0 {
		budget -= minDynamic
	}
	if used > budget {
		used -= trimWidest(widths, fixed, used-budget, minFixed)
	}

	if dynamic == 0 {
		last := len(widths) - 1
		widths[last] = max(0, total-(used-widths[last]))
		return widths
	}

	remaining := max(1, total-used)
	flex := max(1, remaining/dynamic)
	for i, r := range requests {
		if r <= 0 {
			widths[i] = flex
		}
	}
	widths[lastDynamic] = max(1, remaining-flex*(dynamic-1))
	return widths
}

// trimWidest takes up to excess columns from the widest of the indexed
// panels, one at a time, never going below floor. It returns how many
// columns were removed.
func trimWidest(widths, idx []int, excess, floor int) int {
	removed := 0
	for removed < excess {
		widest := -1
		for _, i := range idx {
			if widths[i] > floor && (widest < 0 || widths[i] > widths[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		widths[widest]--
		removed++
	}
	return removed
}

// panelArea returns the rectangle shared by the panels. It ends just above
// the function bar.
func (sm *ScreenManager) panelArea() (x, y, w, h int) {
	return PanelLeft, PanelTop, sm.width - 2, max(0, sm.height-2-PanelTop)
}

func (sm *ScreenManager) relayout() {
	if len(sm.layouts) == 0 {
		return
	}
	x, y, total, height := sm.panelArea()

	requests := make([]int, len(sm.layouts))
	for i, l := range sm.layouts {
		requests[i] = l.width
	}
	widths := ComputeWidths(requests, total, sm.minDynamic, sm.minFixed)

	for i, l := range sm.layouts {
		l.widget.Move(x, y)
		l.widget.Resize(widths[i], height)
		l.widget.SetDrawSeparator(i < len(sm.layouts)-1)
		x += widths[i]
	}
}

// HandleKey routes one key: the help overlay first, then global bindings,
// then the focused panel, then focus movement for unconsumed arrows.
func (sm *ScreenManager) HandleKey(k terminal.Key) Result {
	if k == terminal.KeyNone {
		return Ignored
	}

	if sm.showHelp {
		if k == terminal.KeyResize {
			sm.relayout()
			sm.ForceRedraw()
			return Handled | Relayout | Redraw
		}
		sm.showHelp = false
		sm.ForceRedraw()
		return Handled | Redraw
	}

	switch {
	case k == terminal.KeyResize, key.Matches(k, sm.keys.Redraw):
		sm.relayout()
		sm.ForceRedraw()
		return Handled | Relayout | Redraw
	case key.Matches(k, sm.keys.Quit):
		sm.quit = true
		return Handled | Quit
	case key.Matches(k, sm.keys.Help):
		sm.showHelp = true
		sm.force = true
		return Handled | Redraw
	case key.Matches(k, sm.keys.SwitchPanel):
		if n := len(sm.layouts); n > 0 {
			step := 1
			if k == terminal.KeyShiftTab {
				step = n - 1
			}
			sm.SetFocus((sm.focused + step) % n)
			sm.force = true
		}
		return Handled | Redraw
	}

	if len(sm.layouts) == 0 {
		return Ignored
	}
	if sm.layouts[sm.focused].widget.OnKey(k) {
		return Handled
	}

	switch k {
	case terminal.KeyRight:
		if sm.SetFocus(sm.focused + 1) {
			sm.force = true
			return Handled | Redraw
		}
	case terminal.KeyLeft:
		if sm.SetFocus(sm.focused - 1) {
			sm.force = true
			return Handled | Redraw
		}
	}
	return Ignored
}

// RefreshNow runs the refresh callback immediately and restarts the timer.
func (sm *ScreenManager) RefreshNow(now time.Time) {
	sm.lastRefresh = now
	if sm.refresh != nil {
		sm.refresh()
	}
	for _, l := range sm.layouts {
		l.widget.Invalidate()
	}
	sm.force = true
}

// Tick refreshes when the interval has elapsed since the last refresh, or
// a refresh was requested. It reports whether a refresh ran.
func (sm *ScreenManager) Tick(now time.Time) bool {
	requested := sm.refreshDue.Swap(false)
	if !requested && now.Sub(sm.lastRefresh) < sm.interval {
		return false
	}
	sm.RefreshNow(now)
	return true
}

// Step handles one key and then any due refresh. KeyNone only ticks.
func (sm *ScreenManager) Step(k terminal.Key, now time.Time) {
	sm.HandleKey(k)
	sm.Tick(now)
}

// Draw implements terminal.App.
func (sm *ScreenManager) Draw(s *terminal.Surface) {
	sm.Render(s)
}

// Invalidate implements terminal.App.
func (sm *ScreenManager) Invalidate() {
	sm.ForceRedraw()
}

// Done reports whether quit was requested.
func (sm *ScreenManager) Done() bool {
	return sm.quit
}

// Render draws the header, hints, panels, function bar and help overlay,
// in that order.
func (sm *ScreenManager) Render(s *terminal.Surface) {
	if sm.clear {
		s.Clear()
		sm.clear = false
	}
	w, h := s.Size()

	sm.header.Draw(s, w)
	if sm.hints {
		drawHints(s, w)
	}
	for _, l := range sm.layouts {
		l.widget.Draw(s, sm.force)
	}
	if sm.bar != nil {
		sm.bar.Draw(s, h-2, w)
	}
	if sm.showHelp {
		sm.drawHelp(s, w, h)
	}
	sm.force = false
}

func drawHints(s *terminal.Surface, width int) {
	s.Fill(hintRow, 0, 3, width, ' ', terminal.Dim)
	s.Print(hintRow, 2, "Hint:", terminal.Bright)

	hint := func(y int, keys, rest string) {
		x := 2
		x += s.Print(y, x, "/", terminal.Dim)
		x += s.Print(y, x, keys, terminal.Dim.Bold())
		s.Print(y, x, rest, terminal.Dim)
	}
	hint(hintRow+1, " press Tab ", "to switch panels")
	hint(hintRow+2, " press Ctrl+L ", "for manual refresh")
}

func (sm *ScreenManager) drawHelp(s *terminal.Surface, width, height int) {
	x := (width - helpWidth) / 2
	y := (height - helpHeight) / 2

	s.Fill(y, x, helpHeight, helpWidth, ' ', terminal.Background)
	s.Box(y, x, helpHeight, helpWidth, terminal.BorderActive)
	s.Print(y, x+2, " Help ", terminal.BorderActive.Bold())

	tx, ty := x+4, y+2
	for i, sec := range sm.keys.Sections() {
		if i > 0 {
			ty++
		}
		s.Print(ty, tx, sec.Title, terminal.Normal.Bold())
		ty++
		for _, b := range sec.Bindings {
			hb := b.Help()
			s.PrintMax(ty, tx, fmt.Sprintf("  %-13s: %s", hb.Key, hb.Desc), helpWidth-6, terminal.Normal)
			ty++
		}
	}
	ty++
	s.Print(ty, tx, "Press any key to close...", terminal.Dim)
}

// Run refreshes once, then hands the manager to drive until quit.
func (sm *ScreenManager) Run(ctx context.Context, drive Driver) error {
	sm.RefreshNow(time.Now())
	return drive(ctx, sm)
}

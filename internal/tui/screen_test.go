package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

func TestComputeWidths(t *testing.T) {
	tests := []struct {
		name     string
		requests []int
		total    int
		want     []int
	}{
		{name: "room for everything", requests: []int{35, 0, 35}, total: 120, want: []int{35, 50, 35}},
		{name: "sidebars compressed to minimum", requests: []int{35, 0, 35}, total: 70, want: []int{20, 30, 20}},
		{name: "proportional compression", requests: []int{40, 0, 60}, total: 110, want: []int{32, 30, 48}},
		{name: "all flexible", requests: []int{0, 0, 0}, total: 100, want: []int{33, 33, 34}},
		{name: "negative is flexible", requests: []int{-1, 20}, total: 60, want: []int{40, 20}},
		{name: "single fixed takes everything", requests: []int{50}, total: 80, want: []int{80}},
		{name: "fixed only overflow", requests: []int{60, 40}, total: 50, want: []int{30, 20}},
		{name: "empty", requests: nil, total: 100, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeWidths(tt.requests, tt.total, DefaultMainMinWidth, DefaultSidebarMinWidth)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeWidths_Conservation(t *testing.T) {
	const minDyn, minFixed = 30, 20
	layouts := [][]int{
		{35, 0, 35},
		{0},
		{25},
		{100, 0, 20},
		{1, 0, 5},
		{20, 30, 40},
		{0, 0, 45},
		{80, -1, 0, 80},
	}
	for _, req := range layouts {
		hardMin := 0
		dynamic := false
		for _, r := range req {
			if r > 0 {
				hardMin += minFixed
			} else {
				dynamic = true
			}
		}
		if dynamic {
			hardMin += minDyn
		}

		for total := hardMin; total <= 250; total++ {
			got := ComputeWidths(req, total, minDyn, minFixed)
			sum := 0
			for i, w := range got {
				sum += w
				if req[i] > 0 {
					assert.GreaterOrEqual(t, w, minFixed, "req=%v total=%d", req, total)
				} else {
					assert.GreaterOrEqual(t, w, 1, "req=%v total=%d", req, total)
				}
			}
			require.Equal(t, total, sum, "req=%v total=%d widths=%v", req, total, got)
		}
	}
}

func newDashboardScreen() (*ScreenManager, *KVPanel, *MetricsPanel, *KVPanel) {
	sm := NewScreenManager("run-abc", time.Second)
	run, metrics, sys := NewRunPanel(), NewMetricsPanel(), NewSystemPanel()
	sm.AddPanel(run, 35)
	sm.AddPanel(metrics, 0)
	sm.AddPanel(sys, 35)
	sm.Resize(122, 40)
	return sm, run, metrics, sys
}

func TestScreenManager_Layout(t *testing.T) {
	sm, run, metrics, sys := newDashboardScreen()

	x, y, w, h := run.Bounds()
	assert.Equal(t, []int{1, 8, 35, 30}, []int{x, y, w, h})
	x, _, w, _ = metrics.Bounds()
	assert.Equal(t, []int{36, 50}, []int{x, w})
	x, _, w, _ = sys.Bounds()
	assert.Equal(t, []int{86, 35}, []int{x, w})

	assert.True(t, run.separator)
	assert.True(t, metrics.separator)
	assert.False(t, sys.separator)
	assert.Equal(t, 1, metrics.Columns(), "grid reflows with its width")

	// Removing the last panel moves the separator.
	sm.RemovePanel(2)
	assert.False(t, metrics.separator)
	assert.Equal(t, 2, sm.Len())
}

func TestScreenManager_RemovePanelKeepsFocusedWidget(t *testing.T) {
	sm, run, _, sys := newDashboardScreen()
	sm.SetFocus(2)

	assert.Same(t, run, sm.RemovePanel(0))

	assert.Equal(t, 1, sm.Focused())
	assert.Same(t, sys, sm.Panel(sm.Focused()))
	assert.True(t, sys.HasFocus())
}

func TestScreenManager_FirstPanelHasFocus(t *testing.T) {
	_, run, metrics, sys := newDashboardScreen()
	assert.True(t, run.HasFocus())
	assert.False(t, metrics.HasFocus())
	assert.False(t, sys.HasFocus())
}

func TestScreenManager_FocusKeys(t *testing.T) {
	sm, _, _, _ := newDashboardScreen()

	steps := []struct {
		key   terminal.Key
		focus int
	}{
		{key: terminal.KeyRight, focus: 1},
		{key: terminal.KeyRight, focus: 2},
		{key: terminal.KeyRight, focus: 2},
		{key: terminal.KeyLeft, focus: 1},
		{key: terminal.KeyTab, focus: 2},
		{key: terminal.KeyTab, focus: 0},
		{key: terminal.KeyLeft, focus: 0},
		{key: terminal.KeyShiftTab, focus: 2},
	}
	for i, st := range steps {
		sm.HandleKey(st.key)
		require.Equal(t, st.focus, sm.Focused(), "step %d (%s)", i, st.key)
		for j := 0; j < sm.Len(); j++ {
			w := sm.Panel(j).(interface{ HasFocus() bool })
			assert.Equal(t, j == st.focus, w.HasFocus(), "step %d panel %d", i, j)
		}
	}
}

func TestScreenManager_GridKeepsArrowsUntilEdge(t *testing.T) {
	sm, _, metrics, _ := newDashboardScreen()
	metrics.AddMetric("a", 1, []float64{1})
	metrics.AddMetric("b", 2, []float64{2})
	sm.SetFocus(1)

	// One card per row at this width, so right moves down a row.
	sm.HandleKey(terminal.KeyRight)
	assert.Equal(t, 1, sm.Focused())
	row, col := metrics.Selected()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)

	sm.HandleKey(terminal.KeyRight)
	assert.Equal(t, 2, sm.Focused(), "bumping the last card hands focus on")
}

func TestScreenManager_FocusedPanelGetsKeys(t *testing.T) {
	sm, run, _, _ := newDashboardScreen()
	run.AddKV("a", "1")
	run.AddKV("b", "2")

	r := sm.HandleKey(terminal.KeyDown)
	assert.True(t, r.Has(Handled))
	assert.Equal(t, 1, run.Panel.Selected())
	assert.Equal(t, Ignored, sm.HandleKey('z'))
}

func TestScreenManager_Quit(t *testing.T) {
	for _, k := range []terminal.Key{'q', terminal.KeyCtrlC} {
		sm, _, _, _ := newDashboardScreen()
		r := sm.HandleKey(k)
		assert.True(t, r.Has(Quit))
		assert.True(t, sm.Done())
	}
}

func TestScreenManager_Help(t *testing.T) {
	sm, run, _, _ := newDashboardScreen()
	run.AddKV("a", "1")
	run.AddKV("b", "2")

	sm.HandleKey('h')
	require.True(t, sm.HelpVisible())

	sm.HandleKey(terminal.KeyResize)
	assert.True(t, sm.HelpVisible(), "resize keeps the overlay open")

	sm.HandleKey('q')
	assert.False(t, sm.HelpVisible())
	assert.False(t, sm.Done(), "the closing key is swallowed")

	sm.HandleKey('h')
	sm.HandleKey(terminal.KeyDown)
	assert.Equal(t, 0, run.Panel.Selected())
}

func TestScreenManager_Refresh(t *testing.T) {
	sm, run, _, _ := newDashboardScreen()
	calls := 0
	sm.SetRefreshFunc(func() { calls++ })

	t0 := time.Unix(1000, 0)
	sm.RefreshNow(t0)
	require.Equal(t, 1, calls)

	sm.Render(terminal.NewSurface(122, 40))
	require.False(t, run.Dirty())

	assert.False(t, sm.Tick(t0.Add(500*time.Millisecond)))
	assert.Equal(t, 1, calls)

	assert.True(t, sm.Tick(t0.Add(time.Second)))
	assert.Equal(t, 2, calls)
	assert.True(t, run.Dirty(), "refresh invalidates every panel")

	sm.RequestRefresh()
	assert.True(t, sm.Tick(t0.Add(1100*time.Millisecond)))
	assert.Equal(t, 3, calls)
}

func TestScreenManager_RefreshCanDisableItself(t *testing.T) {
	sm := NewScreenManager("", time.Second)
	calls := 0
	sm.SetRefreshFunc(func() {
		calls++
		sm.SetRefreshFunc(nil)
	})

	t0 := time.Unix(0, 0)
	sm.RefreshNow(t0)
	sm.Tick(t0.Add(2 * time.Second))
	sm.Tick(t0.Add(4 * time.Second))

	assert.Equal(t, 1, calls)
}

func TestScreenManager_StepKeyThenRefresh(t *testing.T) {
	sm, run, _, _ := newDashboardScreen()
	var selectedAtRefresh []int
	sm.SetRefreshFunc(func() {
		selectedAtRefresh = append(selectedAtRefresh, run.Panel.Selected())
	})
	run.AddKV("a", "1")
	run.AddKV("b", "2")
	t0 := time.Unix(0, 0)
	sm.RefreshNow(t0)

	sm.Step(terminal.KeyDown, t0.Add(5*time.Second))
	sm.Step(terminal.KeyNone, t0.Add(5500*time.Millisecond))

	assert.Equal(t, []int{0, 1}, selectedAtRefresh, "the key lands before the refresh")
}

func TestScreenManager_DefaultInterval(t *testing.T) {
	sm := NewScreenManager("", 0)
	assert.Equal(t, DefaultRefresh, sm.interval)
}

func TestScreenManager_Render(t *testing.T) {
	sm, run, _, _ := newDashboardScreen()
	sm.Resize(100, 30)
	sm.SetVersion("1.2.3")
	sm.SetStatus("running")
	sm.SetRuntime(42)
	sm.SetFunctionBar(NewFunctionBar([]string{"q", "h"}, []string{"Quit", "Help"}))
	run.AddKV("State", "running")

	s := terminal.NewSurface(100, 30)
	sm.Draw(s)
	lines := s.Lines()

	assert.Contains(t, lines[1], "expml v1.2.3")
	assert.True(t, strings.HasSuffix(strings.TrimRight(lines[1], "│ "), "run-abc"))
	assert.Contains(t, lines[2], Subtitle)
	assert.Contains(t, lines[2], "status: running | runtime: 42s")
	assert.Contains(t, lines[4], "Hint:")
	assert.Contains(t, lines[5], "/ press Tab to switch panels")
	assert.Contains(t, lines[6], "/ press Ctrl+L for manual refresh")
	assert.Contains(t, lines[8], "Run Overview")
	assert.Contains(t, lines[8], "Metrics")
	assert.Contains(t, lines[8], "System Metrics")
	assert.Contains(t, lines[10], "State")
	assert.Contains(t, lines[28], "q:Quit")
	assert.Contains(t, lines[28], "h:Help")
}

func TestScreenManager_RenderHelp(t *testing.T) {
	sm, _, _, _ := newDashboardScreen()
	sm.Resize(100, 30)
	sm.HandleKey('h')

	s := terminal.NewSurface(100, 30)
	sm.Render(s)
	lines := s.Lines()

	// 50x16 box centred at (7, 25).
	assert.Equal(t, terminal.RuneULCorner, s.Cell(7, 25).Rune)
	assert.Equal(t, terminal.RuneLRCorner, s.Cell(22, 74).Rune)
	assert.Contains(t, lines[7], " Help ")
	assert.Contains(t, lines[9], "Navigation")
	assert.Contains(t, lines[10], "  TAB / Arrows : Switch Panels")
	assert.Contains(t, lines[15], "General")
	assert.Contains(t, lines[17], "q            : Quit")
	assert.Contains(t, lines[21], "Press any key to close...")

	sm.HandleKey('x')
	sm.Render(s)
	assert.NotContains(t, s.String(), "Press any key to close...")
}

func TestScreenManager_Run(t *testing.T) {
	sm, _, _, _ := newDashboardScreen()
	calls := 0
	sm.SetRefreshFunc(func() { calls++ })

	var got terminal.App
	err := sm.Run(context.Background(), func(_ context.Context, app terminal.App) error {
		got = app
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls, "refreshes once before the loop starts")
	assert.Same(t, sm, got)
}

package tui

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/expml/internal/chart"
	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

// Card geometry defaults.
const (
	DefaultCardMinWidth = 40
	DefaultCardHeight   = 12

	flatEpsilon = 1e-4
)

// MetricData is one named series shown as a card.
type MetricData struct {
	Name    string
	Current float64
	Min     float64
	Max     float64
	History []float64
	// Color is the chart palette index, assigned by insertion order.
	Color int
}

// metricRow is the Data of one MetricsPanel item.
type metricRow []*MetricData

// MetricsPanel lays metric cards out in a grid that reflows with the panel
// width. Each Panel item is one row of cards; the column cursor lives here.
type MetricsPanel struct {
	*Panel

	metrics []*MetricData
	columns int
	col     int

	minCardWidth int
	cardHeight   int
	glyphs       chart.GlyphSet
}

// NewMetricsPanel returns an empty grid with default card geometry.
func NewMetricsPanel() *MetricsPanel {
	m := &MetricsPanel{
		Panel:        NewPanel("Metrics"),
		columns:      1,
		minCardWidth: DefaultCardMinWidth,
		cardHeight:   DefaultCardHeight,
		glyphs:       chart.Braille,
	}
	m.Panel.SetDrawer(m)
	m.Panel.SetKeyHandler(m)
	m.Panel.SetItemHeight(m.cardHeight)
	return m
}

// SetCardSize changes the minimum card width and card height and reflows.
func (m *MetricsPanel) SetCardSize(minWidth, height int) {
	if m == nil {
		return
	}
	if minWidth > 0 {
		m.minCardWidth = minWidth
	}
	if height > 0 {
		m.cardHeight = height
	}
	m.reflow()
}

// SetGlyphs selects the chart glyph set.
func (m *MetricsPanel) SetGlyphs(gs chart.GlyphSet) {
	if m == nil {
		return
	}
	m.glyphs = gs
	m.Invalidate()
}

// AddMetric appends a card. If the panel was cleared since the last add,
// the previous metrics are dropped first.
func (m *MetricsPanel) AddMetric(name string, current float64, history []float64) {
	if m == nil {
		return
	}
	if m.Panel.Len() == 0 && len(m.metrics) > 0 {
		m.metrics = nil
	}

	md := &MetricData{
		Name:    name,
		Current: current,
		History: append([]float64(nil), history...),
		Color:   len(m.metrics) % terminal.ChartColors,
	}
	md.Min, md.Max = seriesRange(md.History, current)
	if md.Min == md.Max {
		md.Max += flatEpsilon
	}

	m.metrics = append(m.metrics, md)
	m.reflow()
}

func seriesRange(values []float64, fallback float64) (lo, hi float64) {
	seen := false
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !seen {
			lo, hi, seen = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !seen {
		return fallback, fallback
	}
	return lo, hi
}

// Clear drops every card and resets the column cursor.
func (m *MetricsPanel) Clear() {
	if m == nil {
		return
	}
	m.metrics = nil
	m.Panel.Clear()
	m.col = 0
}

// Resize is UpdateSize.
func (m *MetricsPanel) Resize(w, h int) {
	m.UpdateSize(w, h)
}

// UpdateSize resizes the panel and reflows the grid.
func (m *MetricsPanel) UpdateSize(w, h int) {
	if m == nil {
		return
	}
	m.Panel.Resize(w, h)
	m.reflow()
}

// Columns returns the current number of card columns.
func (m *MetricsPanel) Columns() int {
	if m == nil {
		return 0
	}
	return m.columns
}

// reflow rebuilds the rows from the flat metric list. The flat selection
// index survives a change in column count.
func (m *MetricsPanel) reflow() {
	flat := m.Panel.Selected()*m.columns + m.col

	m.columns = 1
	if m.minCardWidth > 0 && m.w/m.minCardWidth > 1 {
		m.columns = m.w / m.minCardWidth
	}

	m.Panel.Clear()
	m.Panel.SetItemHeight(m.cardHeight)
	for i := 0; i < len(m.metrics); i += m.columns {
		end := min(i+m.columns, len(m.metrics))
		m.Panel.AddItem("", metricRow(m.metrics[i:end:end]))
	}

	if len(m.metrics) == 0 {
		m.col = 0
		return
	}
	flat = clampInt(flat, 0, len(m.metrics)-1)
	m.Panel.SetSelected(flat / m.columns)
	m.col = flat % m.columns
}

// Metrics returns the cards in insertion order.
func (m *MetricsPanel) Metrics() []MetricData {
	if m == nil {
		return nil
	}
	out := make([]MetricData, len(m.metrics))
	for i, md := range m.metrics {
		out[i] = *md
	}
	return out
}

func (m *MetricsPanel) row(i int) metricRow {
	it, ok := m.Panel.Item(i)
	if !ok {
		return nil
	}
	r, _ := it.Data.(metricRow)
	return r
}

// clampCol keeps the column cursor inside the selected row.
func (m *MetricsPanel) clampCol() {
	r := m.row(m.Panel.Selected())
	if len(r) == 0 {
		m.col = 0
		return
	}
	m.col = clampInt(m.col, 0, len(r)-1)
}

// Selected returns the (row, col) of the focused card.
func (m *MetricsPanel) Selected() (row, col int) {
	if m == nil {
		return 0, 0
	}
	m.clampCol()
	return m.Panel.Selected(), m.col
}

// Select moves the cursor to (row, col), clamped to the grid.
func (m *MetricsPanel) Select(row, col int) {
	if m == nil {
		return
	}
	m.Panel.SetSelected(row)
	m.col = col
	m.clampCol()
	m.Invalidate()
}

// SelectedMetric returns the focused card's data.
func (m *MetricsPanel) SelectedMetric() (MetricData, bool) {
	if m == nil {
		return MetricData{}, false
	}
	row, col := m.Selected()
	r := m.row(row)
	if col >= len(r) {
		return MetricData{}, false
	}
	return *r[col], true
}

// OnKey runs the grid navigation and the Panel bindings, then keeps the
// column inside the (possibly shorter) new row.
func (m *MetricsPanel) OnKey(key terminal.Key) bool {
	if m == nil {
		return false
	}
	consumed := m.Panel.OnKey(key)
	m.clampCol()
	return consumed
}

// HandleKey moves the column cursor. Left and right wrap across rows and
// are reported unconsumed at the first and last card.
func (m *MetricsPanel) HandleKey(p *Panel, key terminal.Key) Result {
	if key != terminal.KeyLeft && key != terminal.KeyRight {
		return Ignored
	}
	rowIdx := p.Selected()
	cur := m.row(rowIdx)
	if len(cur) == 0 {
		return Unconsumed
	}
	m.col = clampInt(m.col, 0, len(cur)-1)

	switch key {
	case terminal.KeyLeft:
		if m.col > 0 {
			m.col--
			p.Invalidate()
			return Handled
		}
		if rowIdx > 0 {
			p.SetSelected(rowIdx - 1)
			m.col = len(m.row(rowIdx-1)) - 1
			return Handled
		}
	case terminal.KeyRight:
		if m.col < len(cur)-1 {
			m.col++
			p.Invalidate()
			return Handled
		}
		if rowIdx < p.Len()-1 {
			p.SetSelected(rowIdx + 1)
			m.col = 0
			return Handled
		}
	}
	return Unconsumed
}

// DrawItem renders one row of cards.
func (m *MetricsPanel) DrawItem(s *terminal.Surface, p *Panel, item Item, _, y, x, w, h int, selected bool) {
	s.HLine(y, x, ' ', w, terminal.Normal)

	r, _ := item.Data.(metricRow)
	if len(r) == 0 || m.columns < 1 {
		return
	}

	cardW := w / m.columns
	col := clampInt(m.col, 0, len(r)-1)
	for i, md := range r {
		cx := x + i*cardW
		cw := cardW
		if i == m.columns-1 {
			cw = w - i*cardW
		}
		if i < len(r)-1 {
			cw--
		}
		focused := selected && p.HasFocus() && i == col
		m.drawCard(s, md, y, cx, cw, h, focused)
	}
}

func (m *MetricsPanel) drawCard(s *terminal.Surface, md *MetricData, y, x, w, h int, focused bool) {
	if w < 2 || h < 2 {
		return
	}

	border := terminal.Border
	nameSt := terminal.Normal.Bold()
	if focused {
		border = terminal.Bright.Bold()
		nameSt = terminal.Header
	}
	s.Fill(y+1, x+1, h-2, w-2, ' ', terminal.Normal)
	s.Box(y, x, h, w, border)

	name := md.Name
	if name == "" {
		name = "N/A"
	}
	s.PrintMax(y+1, x+2, name, w-15, nameSt)

	val := fmt.Sprintf("%.2f", md.Current)
	s.Print(y+1, x+w-2-len(val), val, terminal.MetricValue.Bold())

	graphH := h - 6
	graphW := w - 8
	graphX := x + 6
	graphY := y + 3
	if graphH <= 1 || graphW <= 4 {
		return
	}
	axisY := graphY + graphH

	s.VLine(graphY, graphX-1, terminal.RuneVLine, graphH, terminal.GraphAxis)
	s.HLine(axisY, graphX, terminal.RuneHLine, graphW, terminal.GraphAxis)
	s.Put(axisY, graphX-1, terminal.RuneLLCorner, terminal.GraphAxis)
	s.Put(graphY, graphX-1, terminal.RuneRTee, terminal.GraphAxis)

	s.PrintMax(graphY, x+1, axisLabel(md.Max), 4, terminal.Dim)
	s.PrintMax(axisY, x+1, axisLabel(md.Min), 4, terminal.Dim)

	labelY := y + h - 2
	for _, t := range chart.AxisTicks(len(md.History), graphW, chart.MaxLabels(graphW)) {
		s.Put(axisY, graphX+t.Pos, terminal.RuneTTee, terminal.GraphAxis)
		if t.Label != "" {
			s.Print(labelY, graphX+t.LabelStart, t.Label, terminal.Dim)
		}
	}

	chart.Draw(s, md.History, graphY, graphX, graphW, graphH, terminal.Chart(md.Color), m.glyphs)
}

// axisLabel fits a y-axis value into four columns.
func axisLabel(v float64) string {
	if s := fmt.Sprintf("%4.1f", v); len(s) <= 4 {
		return s
	}
	if s := fmt.Sprintf("%4.0f", v); len(s) <= 4 {
		return s
	}
	val, prefix := humanize.ComputeSI(v)
	return fmt.Sprintf("%.0f%s", val, prefix)
}

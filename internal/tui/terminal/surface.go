package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Line-drawing runes.
const (
	RuneHLine    = '─'
	RuneVLine    = '│'
	RuneULCorner = '┌'
	RuneURCorner = '┐'
	RuneLLCorner = '└'
	RuneLRCorner = '┘'
	RuneTTee     = '┬'
	RuneBTee     = '┴'
	RuneRTee     = '┤'
	RuneCross    = '┼'
	RuneCheckerB = '▒'
)

// Cell is one character position. A zero Rune marks the right half of a
// double-width character.
type Cell struct {
	Rune  rune
	Style Style
}

var blank = Cell{Rune: ' ', Style: Normal}

// Surface is an in-memory character grid that widgets draw into. Coordinates
// are (row, col) from the top-left corner. Writes outside the grid are
// clipped silently.
type Surface struct {
	w, h    int
	cells   []Cell
	changed bool
}

// NewSurface returns a blank surface of the given size.
func NewSurface(w, h int) *Surface {
	s := &Surface{}
	s.Resize(w, h)
	return s
}

// Size returns the surface width and height.
func (s *Surface) Size() (w, h int) {
	return s.w, s.h
}

// Resize changes the surface size and clears it.
func (s *Surface) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.w, s.h = w, h
	s.cells = make([]Cell, w*h)
	s.Clear()
}

// Clear blanks every cell.
func (s *Surface) Clear() {
	for i := range s.cells {
		s.cells[i] = blank
	}
	s.changed = true
}

// Changed reports whether anything was written since the last call, and
// resets the flag.
func (s *Surface) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

func (s *Surface) inside(y, x int) bool {
	return y >= 0 && y < s.h && x >= 0 && x < s.w
}

// Cell returns the cell at (y, x), or a blank cell outside the grid.
func (s *Surface) Cell(y, x int) Cell {
	if !s.inside(y, x) {
		return blank
	}
	return s.cells[y*s.w+x]
}

// Put writes one rune and returns the number of columns it occupies.
func (s *Surface) Put(y, x int, r rune, st Style) int {
	width := runewidth.RuneWidth(r)
	if width == 0 {
		return 0
	}
	if !s.inside(y, x) {
		return width
	}
	if width == 2 && x+1 >= s.w {
		// No room for the right half.
		s.set(y*s.w+x, Cell{Rune: ' ', Style: st})
		return width
	}
	s.set(y*s.w+x, Cell{Rune: r, Style: st})
	if width == 2 {
		s.set(y*s.w+x+1, Cell{Rune: 0, Style: st})
	}
	return width
}

func (s *Surface) set(i int, c Cell) {
	if s.cells[i] != c {
		s.cells[i] = c
		s.changed = true
	}
}

// Print writes text starting at (y, x) and returns the columns consumed.
func (s *Surface) Print(y, x int, text string, st Style) int {
	col := x
	for _, r := range text {
		col += s.Put(y, col, r, st)
	}
	return col - x
}

// PrintMax writes at most max columns of text.
func (s *Surface) PrintMax(y, x int, text string, max int, st Style) int {
	if max <= 0 {
		return 0
	}
	return s.Print(y, x, runewidth.Truncate(text, max, ""), st)
}

// HLine draws n copies of r to the right of (y, x).
func (s *Surface) HLine(y, x int, r rune, n int, st Style) {
	for i := 0; i < n; i++ {
		s.Put(y, x+i, r, st)
	}
}

// VLine draws n copies of r downward from (y, x).
func (s *Surface) VLine(y, x int, r rune, n int, st Style) {
	for i := 0; i < n; i++ {
		s.Put(y+i, x, r, st)
	}
}

// Fill paints an h×w rectangle with r.
func (s *Surface) Fill(y, x, h, w int, r rune, st Style) {
	for row := 0; row < h; row++ {
		s.HLine(y+row, x, r, w, st)
	}
}

// Box draws a single-line border around an h×w rectangle.
func (s *Surface) Box(y, x, h, w int, st Style) {
	if h < 2 || w < 2 {
		return
	}
	s.Put(y, x, RuneULCorner, st)
	s.Put(y, x+w-1, RuneURCorner, st)
	s.Put(y+h-1, x, RuneLLCorner, st)
	s.Put(y+h-1, x+w-1, RuneLRCorner, st)
	s.HLine(y, x+1, RuneHLine, w-2, st)
	s.HLine(y+h-1, x+1, RuneHLine, w-2, st)
	s.VLine(y+1, x, RuneVLine, h-2, st)
	s.VLine(y+1, x+w-1, RuneVLine, h-2, st)
}

// Line returns row y as plain text.
func (s *Surface) Line(y int) string {
	if y < 0 || y >= s.h {
		return ""
	}
	var b strings.Builder
	for _, c := range s.cells[y*s.w : (y+1)*s.w] {
		if c.Rune != 0 {
			b.WriteRune(c.Rune)
		}
	}
	return b.String()
}

// Lines returns every row as plain text.
func (s *Surface) Lines() []string {
	lines := make([]string, s.h)
	for y := range lines {
		lines[y] = s.Line(y)
	}
	return lines
}

// String returns the plain-text grid, one line per row.
func (s *Surface) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Render returns the grid as styled text. Consecutive cells sharing a style
// are rendered as one run.
func (s *Surface) Render(t *Theme) string {
	var out strings.Builder
	var run strings.Builder
	for y := 0; y < s.h; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		row := s.cells[y*s.w : (y+1)*s.w]
		cur := Style(0)
		run.Reset()
		for i, c := range row {
			if c.Rune == 0 {
				continue
			}
			if i > 0 && c.Style != cur && run.Len() > 0 {
				out.WriteString(t.Render(cur, run.String()))
				run.Reset()
			}
			cur = c.Style
			run.WriteRune(c.Rune)
		}
		if run.Len() > 0 {
			out.WriteString(t.Render(cur, run.String()))
		}
	}
	return out.String()
}

// Package chart rasterizes float series into character-cell line charts.
//
// A series is projected onto a virtual grid with several sub-positions per
// character cell, consecutive points are joined with Bresenham lines, and
// each cell's block of sub-positions is collapsed into one glyph (braille
// dots or quadrant blocks).
package chart

import (
	"math"
	"strings"

	"github.com/rileyhilliard/expml/internal/tui/terminal"
)

// GlyphSet maps a block of sub-cells to a rune.
type GlyphSet struct {
	Name    string
	SubCols int
	SubRows int
	// bits[row][col] is the mask bit for a sub-cell; row 0 is the top.
	bits  [][]uint8
	glyph func(mask uint8) rune
}

const brailleBase = 0x2800

// Braille draws 2×4 dots per cell using the Unicode braille block.
var Braille = GlyphSet{
	Name:    "braille",
	SubCols: 2,
	SubRows: 4,
	bits: [][]uint8{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	},
	glyph: func(mask uint8) rune { return rune(brailleBase + int(mask)) },
}

// quadrants is indexed by mask: 1 upper-left, 2 upper-right, 4 lower-left, 8 lower-right.
var quadrants = [16]rune{' ', '▘', '▝', '▀', '▖', '▌', '▞', '▛', '▗', '▚', '▐', '▜', '▄', '▙', '▟', '█'}

// Blocks draws 2×2 quadrants per cell, for fonts without braille.
var Blocks = GlyphSet{
	Name:    "blocks",
	SubCols: 2,
	SubRows: 2,
	bits: [][]uint8{
		{0x01, 0x02},
		{0x04, 0x08},
	},
	glyph: func(mask uint8) rune { return quadrants[mask&0x0f] },
}

// GlyphSetByName returns the glyph set for a display.glyphs setting,
// defaulting to Braille.
func GlyphSetByName(name string) GlyphSet {
	if name == Blocks.Name {
		return Blocks
	}
	return Braille
}

// Raster is the result of rasterizing one series.
type Raster struct {
	Width, Height   int
	VWidth, VHeight int
	Min, Max        float64

	// grid holds virtual cells row-major with vy 0 at the bottom.
	grid []bool
	// Glyphs is Height rows of Width runes, row 0 at the top.
	Glyphs [][]rune
}

// IsSet reports whether virtual cell (vx, vy) is lit. vy 0 is the bottom row.
func (r *Raster) IsSet(vx, vy int) bool {
	if vx < 0 || vx >= r.VWidth || vy < 0 || vy >= r.VHeight {
		return false
	}
	return r.grid[vy*r.VWidth+vx]
}

// Lines returns the glyph rows as strings.
func (r *Raster) Lines() []string {
	out := make([]string, len(r.Glyphs))
	for i, row := range r.Glyphs {
		out[i] = string(row)
	}
	return out
}

// String joins Lines with newlines.
func (r *Raster) String() string {
	return strings.Join(r.Lines(), "\n")
}

func (r *Raster) set(vx, vy int) {
	if vx >= 0 && vx < r.VWidth && vy >= 0 && vy < r.VHeight {
		r.grid[vy*r.VWidth+vx] = true
	}
}

// Rasterize renders values into a width×height cell region. NaN and
// infinite samples are skipped and break the line. A flat series sits on
// the bottom row.
func Rasterize(values []float64, width, height int, gs GlyphSet) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	r := &Raster{
		Width:   width,
		Height:  height,
		VWidth:  width * gs.SubCols,
		VHeight: height * gs.SubRows,
	}
	r.grid = make([]bool, r.VWidth*r.VHeight)

	if r.VWidth > 0 && r.VHeight > 0 {
		r.plot(values)
	}
	r.collapse(gs)
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (r *Raster) plot(values []float64) {
	first := true
	for _, v := range values {
		if !finite(v) {
			continue
		}
		if first {
			r.Min, r.Max = v, v
			first = false
			continue
		}
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	if first {
		return
	}

	span := r.Max - r.Min
	if span == 0 {
		span = 1
	}

	n := len(values)
	prevX, prevY := -1, -1
	for i, v := range values {
		if !finite(v) {
			prevX, prevY = -1, -1
			continue
		}

		vx := 0
		if n > 1 {
			vx = i * (r.VWidth - 1) / (n - 1)
		}
		vy := int((v - r.Min) / span * float64(r.VHeight-1))
		vy = clamp(vy, 0, r.VHeight-1)

		switch {
		case prevX < 0:
			r.set(vx, vy)
		case vx != prevX || vy != prevY:
			r.line(prevX, prevY, vx, vy)
		}
		prevX, prevY = vx, vy
	}
}

// line draws an integer Bresenham line including both endpoints.
func (r *Raster) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		r.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (r *Raster) collapse(gs GlyphSet) {
	r.Glyphs = make([][]rune, r.Height)
	for row := 0; row < r.Height; row++ {
		line := make([]rune, r.Width)
		for col := 0; col < r.Width; col++ {
			var mask uint8
			for sy := 0; sy < gs.SubRows; sy++ {
				vy := (r.Height-1-row)*gs.SubRows + (gs.SubRows - 1 - sy)
				for sx := 0; sx < gs.SubCols; sx++ {
					if r.IsSet(col*gs.SubCols+sx, vy) {
						mask |= gs.bits[sy][sx]
					}
				}
			}
			if mask == 0 {
				line[col] = ' '
			} else {
				line[col] = gs.glyph(mask)
			}
		}
		r.Glyphs[row] = line
	}
}

// Canvas is the drawing surface a chart is written into.
type Canvas interface {
	Put(y, x int, r rune, st terminal.Style) int
}

// Draw rasterizes values into the region at (y, x) of size w×h. Only lit
// cells are written, so whatever the caller painted underneath shows through.
func Draw(c Canvas, values []float64, y, x, w, h int, st terminal.Style, gs GlyphSet) {
	r := Rasterize(values, w, h, gs)
	for row, line := range r.Glyphs {
		for col, g := range line {
			if g != ' ' {
				c.Put(y+row, x+col, g, st)
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

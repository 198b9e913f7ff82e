package chart

import (
	"math"
	"strconv"
)

// NiceStep returns a human-friendly tick interval (1, 2, 5, 10, 20, 50, ...)
// so that about target ticks cover span. The result is at least 1.
func NiceStep(span float64, target int) int {
	if target <= 0 {
		target = 1
	}
	if !(span > 0) || math.IsInf(span, 0) {
		return 1
	}

	raw := span / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	residual := raw / mag

	var step float64
	switch {
	case residual > 5:
		step = 10 * mag
	case residual > 2:
		step = 5 * mag
	case residual > 1:
		step = 2 * mag
	default:
		step = mag
	}

	if step < 1 {
		return 1
	}
	return int(math.Round(step))
}

// Tick is one x-axis position. Label is empty when the label collided with
// its left neighbour and was suppressed; the tick mark itself is still drawn.
type Tick struct {
	Pos        int
	Value      int
	Label      string
	LabelStart int
}

// MaxLabels is the label density for an axis of the given width: one label
// per eight columns, never fewer than two.
func MaxLabels(width int) int {
	n := width / 8
	if n < 2 {
		n = 2
	}
	return n
}

// AxisTicks lays out ticks for sample indexes 0..count across width columns.
// Labels are centred on their tick, kept inside the axis, and dropped when
// they would start within one blank column of the previous label.
func AxisTicks(count, width, target int) []Tick {
	if count <= 0 || width <= 0 {
		return nil
	}

	step := NiceStep(float64(count), target)
	var ticks []Tick
	lastEnd := 0
	haveLabel := false

	for val := 0; val <= count; val += step {
		pos := int(float64(val) / float64(count) * float64(width-1))
		t := Tick{Pos: pos, Value: val}

		text := strconv.Itoa(val)
		start := pos - len(text)/2
		if start+len(text) > width {
			start = width - len(text)
		}
		if start < 0 {
			start = 0
		}

		if !haveLabel || start > lastEnd+1 {
			t.Label = text
			t.LabelStart = start
			lastEnd = start + len(text)
			haveLabel = true
		}
		ticks = append(ticks, t)
	}
	return ticks
}

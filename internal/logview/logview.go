// Package logview reads the dashboard's debug.log back for the logs command:
// tailing, level filtering, colouring and following a growing file.
package logview

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/rileyhilliard/expml/internal/logger"
)

// DefaultTail is how many lines the logs command shows without --tail.
const DefaultTail = 50

// ring keeps the last size lines pushed into it.
type ring struct {
	data  []string
	head  int
	count int
}

func newRing(size int) *ring {
	return &ring{data: make([]string, size)}
}

func (r *ring) push(s string) {
	r.data[r.head] = s
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// values returns the buffered lines oldest first.
func (r *ring) values() []string {
	out := make([]string, r.count)
	start := (r.head - r.count + len(r.data)) % len(r.data)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

// Tail returns the last n lines of r. n <= 0 returns every line.
func Tail(r io.Reader, n int) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if n <= 0 {
		var all []string
		for sc.Scan() {
			all = append(all, sc.Text())
		}
		return all, wrapRead(sc.Err())
	}

	buf := newRing(n)
	for sc.Scan() {
		buf.push(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, wrapRead(err)
	}
	return buf.values(), nil
}

func wrapRead(err error) error {
	if err == nil {
		return nil
	}
	return errors.WrapWithCode(err, errors.ErrLog, "Can't read log", "")
}

// ParseLevel extracts the level of a debug.log line. Lines that don't carry a
// "[LEVEL]" tag after the timestamp (wrapped output, stack traces) report false.
func ParseLevel(line string) (logger.Level, bool) {
	if len(line) <= len(logger.TimestampLayout)+2 {
		return 0, false
	}
	rest := line[len(logger.TimestampLayout)+1:]
	if !strings.HasPrefix(rest, "[") {
		return 0, false
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return 0, false
	}
	return logger.ParseLevel(rest[1:end])
}

// Filter keeps lines at min severity or more severe. Untagged lines stay
// with whatever precedes them.
func Filter(lines []string, min logger.Level) []string {
	out := lines[:0:0]
	keep := true
	for _, l := range lines {
		if lvl, ok := ParseLevel(l); ok {
			keep = lvl <= min
		}
		if keep {
			out = append(out, l)
		}
	}
	return out
}

// Colorizer styles log lines. The zero value is not usable; use NewColorizer.
type Colorizer struct {
	enabled bool
	stamp   lipgloss.Style
	levels  map[logger.Level]lipgloss.Style
}

// NewColorizer builds a colorizer rendering through r. When enabled is false
// lines pass through untouched.
func NewColorizer(r *lipgloss.Renderer, enabled bool) *Colorizer {
	if enabled {
		r.SetColorProfile(termenv.ANSI)
	}
	red := r.NewStyle().Foreground(lipgloss.Color("1"))
	return &Colorizer{
		enabled: enabled,
		stamp:   r.NewStyle().Foreground(lipgloss.Color("8")),
		levels: map[logger.Level]lipgloss.Style{
			logger.LevelEmerg:  red.Bold(true),
			logger.LevelAlert:  red.Bold(true),
			logger.LevelCrit:   red.Bold(true),
			logger.LevelError:  red,
			logger.LevelWarn:   r.NewStyle().Foreground(lipgloss.Color("3")),
			logger.LevelNotice: r.NewStyle().Foreground(lipgloss.Color("5")),
			logger.LevelInfo:   r.NewStyle().Foreground(lipgloss.Color("2")),
			logger.LevelDebug:  r.NewStyle().Foreground(lipgloss.Color("4")),
		},
	}
}

// Colorize returns line with its timestamp dimmed and its level tag coloured.
func (c *Colorizer) Colorize(line string) string {
	if !c.enabled {
		return line
	}
	lvl, ok := ParseLevel(line)
	if !ok {
		return line
	}
	n := len(logger.TimestampLayout)
	tagEnd := n + 1 + strings.IndexByte(line[n+1:], ']') + 1
	return c.stamp.Render(line[:n]) + " " + c.levels[lvl].Render(line[n+1:tagEnd]) + line[tagEnd:]
}

// IsTTY reports whether f is a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Package series buckets metrics.jsonl records into named time series and
// splits off system telemetry (keys under "system/") for the system panel.
package series

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/storage"
	"github.com/spf13/afero"
)

// SystemPrefix marks telemetry keys logged by the writer's background monitor.
const SystemPrefix = "system/"

// Series is one metric's values in step order.
type Series struct {
	Name   string
	Values []float64
}

// Last returns the most recent value, or 0 for an empty series.
func (s *Series) Last() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return s.Values[len(s.Values)-1]
}

// Reading is the latest value of one system telemetry key, prefix stripped.
type Reading struct {
	Name  string
	Value float64
}

// Format renders the value with a unit guessed from the key name.
func (r Reading) Format() string {
	name := strings.ToLower(r.Name)
	switch {
	case strings.Contains(name, "percent"), strings.Contains(name, "util"), strings.Contains(name, "load"):
		return fmt.Sprintf("%.1f%%", r.Value)
	case strings.Contains(name, "gb"), strings.Contains(name, "ram"):
		return fmt.Sprintf("%.1fGB", r.Value)
	case strings.Contains(name, "temp"):
		return fmt.Sprintf("%.1f°C", r.Value)
	default:
		return fmt.Sprintf("%.2f", r.Value)
	}
}

// Set accumulates series from records. Series are kept in first-seen order.
type Set struct {
	series  []*Series
	index   map[string]int
	step    int64
	records int
}

// New returns an empty Set.
func New() *Set {
	return &Set{index: make(map[string]int)}
}

// Add folds one record into the set. Keys starting with '_' are bookkeeping
// (step, timestamp, runtime) and non-numeric values are ignored.
func (s *Set) Add(rec *storage.OrderedMap) {
	s.records++
	if step, ok := rec.Float("_step"); ok {
		s.step = int64(step)
	}
	for _, key := range rec.Keys() {
		if key == "" || key[0] == '_' {
			continue
		}
		v, _ := rec.Get(key)
		f, ok := storage.AsFloat(v)
		if !ok {
			continue
		}
		i, seen := s.index[key]
		if !seen {
			i = len(s.series)
			s.index[key] = i
			s.series = append(s.series, &Series{Name: key})
		}
		s.series[i].Values = append(s.series[i].Values, f)
	}
}

// Metrics returns the training series (everything outside system/).
func (s *Set) Metrics() []*Series {
	var out []*Series
	for _, ser := range s.series {
		if !strings.HasPrefix(ser.Name, SystemPrefix) && len(ser.Values) > 0 {
			out = append(out, ser)
		}
	}
	return out
}

// System returns the latest reading of every system/ key.
func (s *Set) System() []Reading {
	var out []Reading
	for _, ser := range s.series {
		if strings.HasPrefix(ser.Name, SystemPrefix) && len(ser.Values) > 0 {
			out = append(out, Reading{Name: strings.TrimPrefix(ser.Name, SystemPrefix), Value: ser.Last()})
		}
	}
	return out
}

// Lookup returns the series with the given full key.
func (s *Set) Lookup(name string) (*Series, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.series[i], true
}

// Step returns the last _step seen.
func (s *Set) Step() int64 {
	return s.step
}

// Records returns how many records were folded in.
func (s *Set) Records() int {
	return s.records
}

// Load reads the run's metrics.jsonl into a new Set.
func Load(fsys afero.Fs, dir string, log logger.Logger) (*Set, error) {
	set := New()
	err := storage.ReadMetrics(fsys, dir, log, func(rec *storage.OrderedMap) error {
		set.Add(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

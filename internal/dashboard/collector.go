// Package dashboard wires the rendering engine to a run directory: it builds
// the three-panel screen, reloads the run's files on every refresh and
// watches the directory so writes show up before the next timer tick.
package dashboard

import (
	"github.com/spf13/afero"

	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/series"
	"github.com/rileyhilliard/expml/internal/storage"
)

// Snapshot is everything one refresh shows.
type Snapshot struct {
	Run *storage.Run
	// Series is nil when metrics.jsonl could not be read. The panels keep
	// their previous contents in that case.
	Series *series.Set
}

// Collector reads one run directory.
type Collector struct {
	fs  afero.Fs
	dir string
	log logger.Logger
}

// NewCollector creates a collector for the run in dir.
func NewCollector(fs afero.Fs, dir string, log logger.Logger) *Collector {
	if log == nil {
		log = logger.Noop()
	}
	return &Collector{fs: fs, dir: dir, log: log}
}

// Dir returns the run directory.
func (c *Collector) Dir() string {
	return c.dir
}

// Collect loads the run files and aggregates the metrics stream. Only a
// failure to read the run itself is returned; a metrics failure is logged.
func (c *Collector) Collect() (*Snapshot, error) {
	run, err := storage.Load(c.fs, c.dir)
	if err != nil {
		return nil, err
	}

	set, err := series.Load(c.fs, c.dir, c.log)
	if err != nil {
		c.log.Warn("metrics: %v", err)
		set = nil
	}
	return &Snapshot{Run: run, Series: set}, nil
}

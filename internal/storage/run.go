// Package storage reads the run directories an experiment writer leaves on
// disk. A runs directory holds one subdirectory per run plus a latest-run
// symlink; each run has config.json, metadata.json, summary.json and an
// append-only metrics.jsonl.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/spf13/afero"
)

// File names inside a run directory.
const (
	ConfigFile   = "config.json"
	MetadataFile = "metadata.json"
	SummaryFile  = "summary.json"
	MetricsFile  = "metrics.jsonl"
	LogFile      = "debug.log"
	LatestLink   = "latest-run"
)

// Run statuses written by the experiment writer.
const (
	StatusRunning  = "RUNNING"
	StatusFinished = "FINISHED"
	StatusFailed   = "FAILED"
	StatusCrashed  = "CRASHED"
	StatusStopped  = "STOPPED"
	StatusUnknown  = "UNKNOWN"
)

// IsTerminal reports whether a run with this status will never change again.
func IsTerminal(status string) bool {
	switch status {
	case StatusFinished, StatusFailed, StatusCrashed, StatusStopped:
		return true
	}
	return false
}

// Metadata is the static environment description captured at run start.
type Metadata struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	User      string     `json:"user"`
	Host      string     `json:"host"`
	OS        string     `json:"os"`
	Python    string     `json:"python"`
	GPUName   string     `json:"gpu_name"`
	DiskTotal FlexString `json:"disk_total"`
	RAMTotal  FlexString `json:"ram_total"`
	Command   string     `json:"command"`
	CPUCount  int        `json:"cpu_count"`
	GPUCount  int        `json:"gpu_count"`
}

// FlexString accepts either a JSON string or a number. Older writers store
// disk_total as raw bytes, newer ones as "512.0GB".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Summary is the writer's latest snapshot of run state.
type Summary struct {
	Status    string
	Runtime   float64
	Timestamp float64
	Step      int64
	Epoch     float64
	HasEpoch  bool

	// Fields is the whole decoded object in file order.
	Fields *OrderedMap
}

// Run bundles everything the dashboard shows about one run except the
// metrics stream, which is read separately with ReadMetrics.
type Run struct {
	Dir      string
	Config   *OrderedMap
	Metadata Metadata
	Summary  Summary
}

// Name is the run directory's base name.
func (r *Run) Name() string {
	return filepath.Base(r.Dir)
}

// Load reads config, metadata and summary of the run in dir. Missing files
// yield defaults; malformed files are errors.
func Load(fsys afero.Fs, dir string) (*Run, error) {
	info, err := fsys.Stat(dir)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStorage,
			"Run directory not found: "+dir,
			"Check the --path flag or the runs_dir setting")
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrStorage,
			"Not a run directory: "+dir,
			"Point expml at the runs directory, not a file inside it")
	}

	run := &Run{Dir: dir}

	if run.Config, err = ReadConfig(fsys, dir); err != nil {
		return nil, err
	}
	if run.Metadata, err = ReadMetadata(fsys, dir); err != nil {
		return nil, err
	}
	if run.Summary, err = ReadSummary(fsys, dir); err != nil {
		return nil, err
	}
	return run, nil
}

// ReadConfig reads config.json, preserving key order. A missing file gives an
// empty map.
func ReadConfig(fsys afero.Fs, dir string) (*OrderedMap, error) {
	m := NewOrderedMap()
	if err := readJSON(fsys, filepath.Join(dir, ConfigFile), m); err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	return m, nil
}

// ReadMetadata reads metadata.json. ID and Name default to "unknown".
func ReadMetadata(fsys afero.Fs, dir string) (Metadata, error) {
	var md Metadata
	if err := readJSON(fsys, filepath.Join(dir, MetadataFile), &md); err != nil && !os.IsNotExist(err) {
		return Metadata{}, err
	}
	if md.ID == "" {
		md.ID = "unknown"
	}
	if md.Name == "" {
		md.Name = "unknown"
	}
	return md, nil
}

// ReadSummary reads summary.json. Status defaults to UNKNOWN.
func ReadSummary(fsys afero.Fs, dir string) (Summary, error) {
	fields := NewOrderedMap()
	if err := readJSON(fsys, filepath.Join(dir, SummaryFile), fields); err != nil && !os.IsNotExist(err) {
		return Summary{}, err
	}
	return summaryFromFields(fields), nil
}

func summaryFromFields(fields *OrderedMap) Summary {
	s := Summary{Status: StatusUnknown, Fields: fields}
	if status, ok := fields.String("status"); ok && status != "" {
		s.Status = status
	}
	s.Runtime, _ = fields.Float("_runtime")
	s.Timestamp, _ = fields.Float("_timestamp")
	if step, ok := fields.Float("_step"); ok {
		s.Step = int64(step)
	}
	s.Epoch, s.HasEpoch = fields.Float("epoch")
	return s
}

// readJSON decodes one JSON file. Not-exist errors pass through unwrapped so
// callers can test them with os.IsNotExist.
func readJSON(fsys afero.Fs, path string, v interface{}) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.WrapWithCode(err, errors.ErrStorage,
			"Cannot read "+filepath.Base(path),
			"Check permissions on "+filepath.Dir(path))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapWithCode(err, errors.ErrStorage,
			"Malformed "+filepath.Base(path),
			"The writer may be mid-update; it is retried on the next refresh")
	}
	return nil
}

package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/spf13/afero"
)

// maxLineSize caps one metrics.jsonl line. Lines are a few hundred bytes in
// practice; a run logging a wide histogram can reach tens of kilobytes.
const maxLineSize = 4 << 20

// ReadMetrics streams metrics.jsonl, calling fn with every well-formed line
// decoded in file key order.
// Blank and malformed lines (a line still being written, for example) are
// skipped and logged. A missing file is not an error. Returning an error
// from fn stops the scan and returns that error.
func ReadMetrics(fsys afero.Fs, dir string, log logger.Logger, fn func(*OrderedMap) error) error {
	if log == nil {
		log = logger.Noop()
	}

	path := filepath.Join(dir, MetricsFile)
	f, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrStorage,
			"Cannot open "+MetricsFile,
			"Check permissions on "+dir)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec := NewOrderedMap()
		if err := json.Unmarshal(line, rec); err != nil {
			log.Warn("%s:%d skipped: %v", MetricsFile, lineNo, err)
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.WrapWithCode(err, errors.ErrStorage,
			"Failed reading "+MetricsFile,
			"")
	}
	return nil
}

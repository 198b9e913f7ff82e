package logview

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rileyhilliard/expml/internal/errors"
)

// PollInterval bounds how long Follow waits when no file event arrives.
const PollInterval = 100 * time.Millisecond

// Follow calls fn for every complete line appended to path after the call,
// until ctx is done. A truncated or replaced file is read again from the top.
func Follow(ctx context.Context, path string, fn func(string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrLog,
			"Can't open "+path,
			"Start the dashboard once so it creates debug.log")
	}
	defer func() { f.Close() }()

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrLog, "Can't seek "+path, "")
	}

	// Events only shorten the wait; the poll below is enough on its own.
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if w, err := fsnotify.NewWatcher(); err == nil {
		defer w.Close()
		if w.Add(filepath.Dir(path)) == nil {
			events, watchErrs = w.Events, w.Errors
		}
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	reader := bufio.NewReader(f)
	var partial strings.Builder
	for {
		for {
			chunk, err := reader.ReadString('\n')
			offset += int64(len(chunk))
			if err != nil {
				partial.WriteString(chunk)
				break
			}
			partial.WriteString(strings.TrimSuffix(chunk, "\n"))
			fn(strings.TrimSuffix(partial.String(), "\r"))
			partial.Reset()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-events:
		case <-watchErrs:
		case <-ticker.C:
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		cur, _ := f.Stat()
		if info.Size() < offset || (cur != nil && !os.SameFile(info, cur)) {
			nf, err := os.Open(path)
			if err != nil {
				continue
			}
			f.Close()
			f = nf
			offset = 0
			partial.Reset()
			reader.Reset(f)
		}
	}
}

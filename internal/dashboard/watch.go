package dashboard

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/rileyhilliard/expml/internal/errors"
	"github.com/rileyhilliard/expml/internal/logger"
	"github.com/rileyhilliard/expml/internal/storage"
)

// watched are the run files whose changes trigger an early refresh. The
// debug log is left out because the dashboard writes it.
var watched = map[string]bool{
	storage.ConfigFile:   true,
	storage.MetadataFile: true,
	storage.SummaryFile:  true,
	storage.MetricsFile:  true,
}

// Watcher calls a function whenever the run's data files change.
type Watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// Watch starts watching dir. notify runs on the watcher's goroutine and must
// be safe to call concurrently with the UI loop.
func Watch(dir string, log logger.Logger, notify func()) (*Watcher, error) {
	if log == nil {
		log = logger.Noop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStorage,
			"Cannot start file watcher",
			"The dashboard still refreshes on its timer")
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errors.WrapWithCode(err, errors.ErrStorage,
			"Cannot watch "+dir,
			"The dashboard still refreshes on its timer")
	}

	w := &Watcher{fw: fw, done: make(chan struct{})}
	w.wg.Add(1)
	go w.loop(log, notify)
	return w, nil
}

func (w *Watcher) loop(log logger.Logger, notify func()) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if watched[filepath.Base(ev.Name)] {
				notify()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn("watcher: %v", err)
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
		w.wg.Wait()
	})
	return err
}

// Package watch reports saves of a script document.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before a change is reported.
const DefaultDebounce = 100 * time.Millisecond

// Change is one settled change to the watched file.
type Change struct {
	Path    string
	Removed bool // the file no longer exists
}

// Watcher monitors one file using fsnotify. The file's directory is watched
// rather than the file itself so that editors which save by rename are seen.
type Watcher struct {
	Path    string
	Changes <-chan Change // Read-only external channel

	changes  chan Change // Internal write channel
	stop     chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// New creates a watcher for path. A debounce of zero uses DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Path:     abs,
		Changes:  ch,
		changes:  ch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: debounce,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.Path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. Changes nobody has read
// yet may be dropped.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		pending bool
		last    time.Time
	)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.emit()
				}
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending, last = true, time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(last) >= w.debounce {
				w.emit()
				pending = false
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next event retries.
		}
	}
}

// emit blocks while the buffer is full, unless Stop is called.
func (w *Watcher) emit() {
	_, err := os.Stat(w.Path)
	select {
	case w.changes <- Change{Path: w.Path, Removed: os.IsNotExist(err)}:
	case <-w.stop:
	}
}

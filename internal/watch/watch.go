// Package watch reports changes to dataset files on disk.
//
// A [Watcher] watches either a single file or a directory. Single files are
// watched through their parent directory so editors that save by renaming
// a temporary file over the original are still seen. Bursts of events for
// the same file are coalesced into one callback after a quiet period.
package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/moocn/pkg/dataset"
	"github.com/matzehuels/moocn/pkg/errors"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 150 * time.Millisecond

// Option configures a [Watcher].
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero reports every event batch
// as soon as it is read.
func WithDebounce(d time.Duration) Option { return func(w *Watcher) { w.debounce = d } }

// WithLogger sets the logger used for watch errors.
func WithLogger(l *log.Logger) Option { return func(w *Watcher) { w.logger = l } }

// Watcher watches a dataset file or a directory of dataset files.
type Watcher struct {
	fs       *fsnotify.Watcher
	file     string // non-empty when watching a single file
	debounce time.Duration
	logger   *log.Logger
}

// New starts watching path, which may be a file or a directory.
func New(path string, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "watch %s", path)
	}
	w := &Watcher{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	dir := path
	if !info.IsDir() {
		if w.file, err = filepath.Abs(path); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "watch %s", path)
		}
		dir = filepath.Dir(w.file)
	}
	if w.fs, err = fsnotify.NewWatcher(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	if err := w.fs.Add(dir); err != nil {
		w.fs.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "watch %s", dir)
	}
	return w, nil
}

// match reports whether name is a file this watcher reports on.
func (w *Watcher) match(name string) bool {
	if w.file != "" {
		abs, err := filepath.Abs(name)
		return err == nil && abs == w.file
	}
	_, err := dataset.FormatFromPath(name)
	return err == nil
}

// Run calls fn with the path of every changed file until ctx is done or
// the watcher is closed. Callbacks run on the caller's goroutine.
func (w *Watcher) Run(ctx context.Context, fn func(path string)) error {
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	flush := func() {
		names := make([]string, 0, len(pending))
		for name := range pending {
			names = append(names, name)
		}
		sort.Strings(names)
		clear(pending)
		for _, name := range names {
			fn(name)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !w.match(event.Name) {
				continue
			}
			pending[event.Name] = true
			if w.debounce <= 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer, fire = nil, nil
			flush()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error { return w.fs.Close() }

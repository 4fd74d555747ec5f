// Package watcher re-runs analysis when Java sources change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/semi/internal/discovery"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyStarted is returned by a second Start call.
var ErrAlreadyStarted = errors.New("watcher already started")

// Callback receives the changed files of one debounce period, sorted.
// Removed files are included; callers stat them if they care.
type Callback func(ctx context.Context, files []string)

// Watcher watches a source tree recursively and batches changes to files the
// discovery patterns accept.
type Watcher struct {
	watcher   *fsnotify.Watcher
	root      string
	discovery *discovery.FileDiscovery
	debounce  time.Duration
	logger    *slog.Logger

	callback Callback
	ctx      context.Context
	cancel   context.CancelFunc

	mu          sync.Mutex
	paused      bool
	accumulated map[string]bool
	timer       *time.Timer

	// wake makes the loop pick up a timer armed outside it.
	wake     chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

// New creates a watcher for root. A zero debounce uses DefaultDebounce and a
// nil logger uses slog.Default().
func New(root string, fd *discovery.FileDiscovery, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:     fw,
		root:        abs,
		discovery:   fd,
		debounce:    debounce,
		logger:      logger,
		accumulated: make(map[string]bool),
		wake:        make(chan struct{}, 1),
		doneCh:      make(chan struct{}),
	}
	if err := w.addRecursive(abs); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched directory.
func (w *Watcher) Root() string { return w.root }

// Start begins delivering batches to callback until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context, callback Callback) error {
	if callback == nil {
		return errors.New("watcher: nil callback")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return ErrAlreadyStarted
	}
	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)
	go w.loop()
	return nil
}

// Stop stops the watcher and waits for a running callback to return.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		cancel := w.cancel
		w.mu.Unlock()
		if cancel != nil {
			cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

// Done is closed once the watch loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.doneCh }

// Pause holds batches back; changes keep accumulating.
func (w *Watcher) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = true
}

// Resume releases batches again. Changes accumulated while paused are
// delivered by the next debounce period.
func (w *Watcher) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = false
	if len(w.accumulated) > 0 {
		w.resetTimerLocked()
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case <-w.timerC():
			w.flush()

		case <-w.wake:

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.ignored(event.Name) {
				return
			}
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
			}
			return
		}
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	if !w.accepts(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.accumulated[event.Name] = true
	w.resetTimerLocked()
}

// timerC returns the channel of the pending debounce timer, or nil so the
// select never fires on it.
func (w *Watcher) timerC() <-chan time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		return nil
	}
	return w.timer.C
}

func (w *Watcher) resetTimerLocked() {
	if w.timer == nil {
		w.timer = time.NewTimer(w.debounce)
		return
	}
	w.timer.Reset(w.debounce)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	w.timer = nil
	if w.paused || len(w.accumulated) == 0 {
		w.mu.Unlock()
		return
	}
	files := make([]string, 0, len(w.accumulated))
	for f := range w.accumulated {
		files = append(files, f)
	}
	w.accumulated = make(map[string]bool)
	w.mu.Unlock()

	slices.Sort(files)
	w.logger.Debug("files changed", "count", len(files))
	w.callback(w.ctx, files)
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) accepts(path string) bool {
	rel, ok := w.rel(path)
	if !ok {
		return false
	}
	return w.discovery.Matches(rel) && !w.discovery.ShouldIgnore(rel)
}

func (w *Watcher) ignored(dir string) bool {
	rel, ok := w.rel(dir)
	if !ok || rel == "." {
		return false
	}
	return w.discovery.ShouldIgnore(rel)
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("error accessing path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}

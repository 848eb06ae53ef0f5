// Package watcher watches the import inbox and hands settled files to the
// import pipeline.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports files written under root once they stop changing. It
// watches root and its direct subdirectories; deeper directories are not
// watched.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	root   string
	fs     *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile
	closed  bool

	events chan Event
	done   chan struct{}
}

// pendingFile tracks a file that may still be being written.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New starts watching root and every directory directly under it, except
// the skip names. Events are delivered once Run is called.
func New(logger *slog.Logger, root string, opts Options, skip ...string) (*Watcher, error) {
	opts.setDefaults()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		logger:  logger,
		opts:    opts,
		root:    filepath.Clean(root),
		fs:      fw,
		pending: make(map[string]*pendingFile),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}
	w.opts.IgnorePatterns = append(slices.Clip(w.opts.IgnorePatterns), skip...)

	if err := fw.Add(w.root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("read %s: %w", w.root, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			w.addDir(filepath.Join(w.root, e.Name()))
		}
	}
	return w, nil
}

// Events delivers settled files. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run processes file system notifications until ctx is done, then releases
// the watcher and closes Events.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) shutdown() {
	close(w.done)

	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	clear(w.pending)
	w.closed = true
	w.mu.Unlock()

	if err := w.fs.Close(); err != nil {
		w.logger.Warn("failed to close file watcher", "error", err)
	}
	close(w.events)
}

// depth is the number of path components below root, or -1 outside it.
func (w *Watcher) depth(path string) int {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return -1
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func (w *Watcher) addDir(path string) {
	if w.opts.shouldIgnore(path) {
		return
	}
	if err := w.fs.Add(path); err != nil {
		w.logger.Warn("failed to watch directory", "path", path, "error", err)
		return
	}
	w.logger.Debug("watching directory", "path", path)
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if w.opts.shouldIgnore(path) {
		return
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.cancel(path)
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if ev.Has(fsnotify.Create) && w.depth(path) == 1 {
			w.addDir(path)
		}
		return
	}
	w.settle(path, info)
}

// settle (re)starts the quiet-period timer for path.
func (w *Watcher) settle(path string, info os.FileInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}
	w.pending[path] = &pendingFile{
		size:    info.Size(),
		modTime: info.ModTime(),
		timer:   time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) }),
	}
}

// checkSettled emits path if it has not changed since the timer started,
// or waits another period if it has.
func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	p, ok := w.pending[path]
	if !ok {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		return
	}
	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		p.size, p.modTime = info.Size(), info.ModTime()
		p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
		return
	}

	delete(w.pending, path)
	select {
	case w.events <- Event{Path: path, Size: info.Size(), ModTime: info.ModTime()}:
	case <-w.done:
	}
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

package watcher

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/lexandro/codemap/fileio"
)

// Op is the kind of a raw filesystem event.
type Op int

const (
	OpCreate Op = iota + 1
	OpWrite
	OpRemove
	OpRename
	// OpRescan reports that the backend dropped events; the whole root
	// must be reconciled against the disk.
	OpRescan
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	case OpRescan:
		return "rescan"
	}
	return "unknown"
}

// Event is one raw filesystem event with an absolute path.
type Event struct {
	Path string
	Op   Op
}

// IgnoreChecker is used by the watcher to check if a path should be ignored.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Watcher provides recursive file system watching for one project root.
// Events are delivered undebounced; the consumer owns debouncing.
type Watcher struct {
	fsWatcher     *fsnotify.Watcher
	ignoreChecker IgnoreChecker
	rootDir       string
	logger        *slog.Logger

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	errorLimiter *rate.Limiter
	suppressed   int
}

// NewWatcher creates a recursive file watcher on the given root directory.
// It registers all non-ignored subdirectories for watching.
func NewWatcher(rootDir string, ignoreChecker IgnoreChecker, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:     fsWatcher,
		ignoreChecker: ignoreChecker,
		rootDir:       rootDir,
		logger:        logger,
		events:        make(chan Event, 256),
		done:          make(chan struct{}),
		errorLimiter:  rate.NewLimiter(rate.Every(10*time.Second), 3),
	}

	if err := w.addTree(rootDir, nil); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// addTree walks dir and watches every non-ignored directory below it. When
// found is non-nil it is called for each non-ignored file.
func (w *Watcher) addTree(dir string, found func(path string)) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil // Skip entries that can't be read
		}
		if !d.IsDir() {
			if found != nil && !w.ignoreChecker.ShouldIgnore(path) {
				found(path)
			}
			return nil
		}
		if path != w.rootDir && w.ignoreChecker.ShouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if watchErr := w.fsWatcher.Add(path); watchErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
}

// Events returns the channel that receives raw file system events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins listening for file system events. Call this in a goroutine.
// It runs until the watcher is closed.
func (w *Watcher) Start() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.handleError(err)
		}
	}
}

// handleEvent converts a single fsnotify event into zero or more Events.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if fileio.IsTempFile(filepath.Base(path)) {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if w.ignoreChecker.ShouldIgnoreDir(path) {
				return
			}
			// Files may land in the directory before its watch exists.
			err := w.addTree(path, func(file string) {
				w.emit(Event{Path: file, Op: OpCreate})
			})
			if err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
		if !w.ignoreChecker.ShouldIgnore(path) {
			w.emit(Event{Path: path, Op: OpCreate})
		}

	case event.Has(fsnotify.Write):
		if !w.ignoreChecker.ShouldIgnore(path) {
			w.emit(Event{Path: path, Op: OpWrite})
		}

	case event.Has(fsnotify.Remove):
		// Removals pass unfiltered: the path may have been indexed under
		// rules that no longer apply.
		w.emit(Event{Path: path, Op: OpRemove})

	case event.Has(fsnotify.Rename):
		// A renamed directory keeps its watch under the old name.
		_ = w.fsWatcher.Remove(path)
		w.emit(Event{Path: path, Op: OpRename})
	}
}

func (w *Watcher) handleError(err error) {
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		w.logger.Warn("watcher event queue overflowed, requesting rescan", "root", w.rootDir)
		w.emit(Event{Path: w.rootDir, Op: OpRescan})
		return
	}
	if !w.errorLimiter.Allow() {
		w.suppressed++
		return
	}
	if w.suppressed > 0 {
		w.logger.Warn("watcher error", "root", w.rootDir, "error", err, "suppressed", w.suppressed)
		w.suppressed = 0
		return
	}
	w.logger.Warn("watcher error", "root", w.rootDir, "error", err)
}

// emit delivers an event unless the watcher is closed first.
func (w *Watcher) emit(event Event) {
	select {
	case w.events <- event:
	case <-w.done:
	}
}

// Close stops the watcher and releases resources. A pending send is
// abandoned. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// Package watch recursively monitors a directory tree for source-map
// file changes, debouncing rapid-fire writes from a single save — adapted
// from pkg/lsp's FileWatcher, generalized from a fixed ".dingo" suffix to
// a caller-supplied predicate.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sourcemapgo/tracemap/internal/log"
)

var ignoredDirs = []string{
	"node_modules", "vendor", ".git", "dist", "build", ".idea", ".vscode", "bin", "obj",
}

// Watcher monitors a workspace root recursively, invoking onChange once
// per distinct matched file after a debounce window closes.
type Watcher struct {
	watcher       *fsnotify.Watcher
	logger        log.Logger
	matches       func(path string) bool
	onChange      func(path string)
	debounceTimer *time.Timer
	debounceDur   time.Duration
	pendingFiles  map[string]bool
	mu            sync.Mutex
	done          chan struct{}
	closed        bool
}

// New starts a Watcher over workspaceRoot. matches reports whether a
// changed path is relevant (e.g. has a ".map" suffix); onChange is
// invoked once per debounce window per distinct path.
func New(workspaceRoot string, logger log.Logger, matches func(path string) bool, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:      fsw,
		logger:       logger,
		matches:      matches,
		onChange:     onChange,
		debounceDur:  500 * time.Millisecond,
		pendingFiles: make(map[string]bool),
		done:         make(chan struct{}),
	}

	if err := w.watchRecursive(workspaceRoot); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.watchLoop()

	logger.Infof("watcher started (root: %s, debounce: %s)", workspaceRoot, w.debounceDur)
	return w, nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && shouldIgnore(path) {
			w.logger.Debugf("ignoring directory: %s", path)
			return filepath.SkipDir
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Warnf("failed to watch %s: %v", path, err)
			} else {
				w.logger.Debugf("watching directory: %s", path)
			}
		}
		return nil
	})
}

func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, ignore := range ignoredDirs {
		if base == ignore {
			return true
		}
	}
	return strings.HasPrefix(base, ".") && base != "."
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !shouldIgnore(event.Name) {
						if err := w.watcher.Add(event.Name); err != nil {
							w.logger.Warnf("failed to watch new directory %s: %v", event.Name, err)
						} else {
							w.logger.Debugf("started watching new directory: %s", event.Name)
						}
					}
				}
			}

			if !w.matches(event.Name) {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.logger.Debugf("file event: %s (%s)", event.Name, event.Op.String())
				w.handleFileChange(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleFileChange(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pendingFiles[path] = true

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDur, w.processPendingFiles)
}

func (w *Watcher) processPendingFiles() {
	w.mu.Lock()
	files := make([]string, 0, len(w.pendingFiles))
	for path := range w.pendingFiles {
		files = append(files, path)
	}
	w.pendingFiles = make(map[string]bool)
	w.mu.Unlock()

	for _, path := range files {
		w.logger.Debugf("processing debounced file change: %s", path)
		w.onChange(path)
	}
}

// Close stops the watcher. Idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)
	return w.watcher.Close()
}

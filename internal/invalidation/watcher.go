package invalidation

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/registry"
)

// Watcher marks a root stale on any file system event below it or on its entry
// point file. Prepare arms the watches before a build; MarkFresh clears the stale
// flag only when nothing changed since then.
type Watcher struct {
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	roots map[string]*watchedRoot    // folded root → state
	paths map[string]map[string]bool // watched path → folded roots
}

type watchedRoot struct {
	paths   []string
	stale   bool
	broken  bool   // a watch could not be added
	events  uint64 // events seen since the root was first armed
	armedAt uint64 // events at the last Prepare
	pending bool   // Prepare called, MarkFresh not yet
}

// NewWatcher starts watching; the event loop stops when ctx is done or Close is called.
func NewWatcher(ctx context.Context) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		watcher: fw,
		roots:   make(map[string]*watchedRoot),
		paths:   make(map[string]map[string]bool),
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Prepare watches root, every directory below it and entryPoint ahead of a build.
// The root stays expired until the matching MarkFresh.
func (w *Watcher) Prepare(root, entryPoint string) {
	key := registry.Fold(filepath.Clean(root))
	paths := collectPaths(root, entryPoint)

	w.mu.Lock()
	defer w.mu.Unlock()
	state := w.arm(root, key, paths)
	state.stale = true
	state.armedAt = state.events
	state.pending = true
}

// MarkFresh clears the stale flag of root unless a change arrived since Prepare.
// Without a preceding Prepare the watches are armed now.
func (w *Watcher) MarkFresh(root, entryPoint string) {
	key := registry.Fold(filepath.Clean(root))

	w.mu.Lock()
	state, ok := w.roots[key]
	prepared := ok && state.pending
	w.mu.Unlock()

	if !prepared {
		paths := collectPaths(root, entryPoint)
		w.mu.Lock()
		defer w.mu.Unlock()
		state = w.arm(root, key, paths)
		state.stale = state.broken
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	state.pending = false
	state.stale = state.broken || state.events != state.armedAt
	if state.stale && !state.broken {
		slog.Debug("Content root changed during build", logfields.Root(root))
	}
}

// arm replaces the watches of key with paths. The caller holds w.mu.
func (w *Watcher) arm(root, key string, paths []string) *watchedRoot {
	state, ok := w.roots[key]
	if !ok {
		state = &watchedRoot{}
		w.roots[key] = state
	}
	for _, p := range state.paths {
		w.unwatch(p, key)
	}
	state.paths = state.paths[:0]
	state.broken = false
	for _, p := range paths {
		if err := w.watch(p, key); err != nil {
			slog.Warn("Failed to watch path", logfields.Root(root), logfields.Path(p), logfields.Error(err))
			// Without the watch a change could go unnoticed.
			state.broken = true
			continue
		}
		state.paths = append(state.paths, p)
	}
	return state
}

// IsExpired reports whether root changed since it was last marked fresh. Unknown
// roots are expired.
func (w *Watcher) IsExpired(root string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.roots[registry.Fold(filepath.Clean(root))]
	return !ok || state.stale
}

func (w *Watcher) watch(path, key string) error {
	owners, ok := w.paths[path]
	if !ok {
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		owners = make(map[string]bool)
		w.paths[path] = owners
	}
	owners[key] = true
	return nil
}

func (w *Watcher) unwatch(path, key string) {
	owners := w.paths[path]
	delete(owners, key)
	if len(owners) == 0 {
		delete(w.paths, path)
		_ = w.watcher.Remove(path)
	}
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", logfields.Error(err))
			w.markAllStale()
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	name := filepath.Clean(ev.Name)
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range []string{name, filepath.Dir(name)} {
		for key := range w.paths[p] {
			state := w.roots[key]
			if state == nil {
				continue
			}
			state.events++
			if !state.stale {
				state.stale = true
				slog.Debug("Content root changed", logfields.Root(key), logfields.Path(name), slog.String("op", ev.Op.String()))
			}
		}
	}
}

func (w *Watcher) markAllStale() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, state := range w.roots {
		state.events++
		state.stale = true
	}
}

func collectPaths(root, entryPoint string) []string {
	var paths []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			paths = append(paths, filepath.Clean(path))
		}
		return nil
	})
	if entryPoint != "" {
		if _, err := os.Stat(entryPoint); err == nil {
			paths = append(paths, filepath.Clean(entryPoint))
		}
	}
	return paths
}

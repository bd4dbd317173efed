// Package loader provides a filesystem-backed partial loader for the
// template engine.
//
// FS resolves partial paths against a root directory, caches file contents,
// and can watch the root for changes to invalidate stale entries — useful
// during development where templates are edited while the server runs.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrOutsideRoot is returned for paths that escape the loader root.
var ErrOutsideRoot = errors.New("path escapes the template root")

// FS loads template source from a directory tree.
type FS struct {
	root string
	log  *slog.Logger

	mu    sync.RWMutex
	cache map[string]string

	watcher      *fsnotify.Watcher
	onInvalidate func(name string)
	done         chan struct{}
}

// New creates a loader rooted at dir. The directory must exist.
func New(dir string) (*FS, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template root %s is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &FS{
		root:  abs,
		log:   slog.Default(),
		cache: make(map[string]string),
	}, nil
}

// SetLogger replaces the loader's logger.
func (f *FS) SetLogger(log *slog.Logger) {
	f.log = log
}

// OnInvalidate registers a callback fired when a cached template is
// invalidated by a filesystem change. Engines hook RemoveTemplate here so
// cached parsed partials are dropped together with the source cache.
func (f *FS) OnInvalidate(fn func(name string)) {
	f.onInvalidate = fn
}

// Load returns the source of the template at the given path, relative to
// the loader root. Results are cached until the file changes (when watching)
// or Invalidate is called.
func (f *FS) Load(name string) (string, error) {
	f.mu.RLock()
	source, ok := f.cache[name]
	f.mu.RUnlock()
	if ok {
		return source, nil
	}

	full, err := f.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	source = string(data)

	f.mu.Lock()
	f.cache[name] = source
	f.mu.Unlock()
	return source, nil
}

// Invalidate drops a cached entry and notifies the invalidation hook.
func (f *FS) Invalidate(name string) {
	f.mu.Lock()
	delete(f.cache, name)
	f.mu.Unlock()
	if f.onInvalidate != nil {
		f.onInvalidate(name)
	}
}

// resolve joins name onto the root and rejects traversal outside of it.
func (f *FS) resolve(name string) (string, error) {
	full := filepath.Join(f.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(f.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
	}
	return full, nil
}

// Watch starts watching the root tree with fsnotify and invalidates cache
// entries as their files change. Call Close to stop.
func (f *FS) Watch() error {
	if f.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch every directory under the root; fsnotify is not recursive.
	err = filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	f.watcher = watcher
	f.done = make(chan struct{})
	go f.watchLoop()
	f.log.Debug("watching template root", "root", f.root)
	return nil
}

func (f *FS) watchLoop() {
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			f.handleEvent(event)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.log.Warn("template watcher error", "error", err)
		case <-f.done:
			return
		}
	}
}

func (f *FS) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need to be added to the watch set.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := f.watcher.Add(event.Name); err != nil {
				f.log.Warn("cannot watch new directory", "dir", event.Name, "error", err)
			}
			return
		}
	}

	rel, err := filepath.Rel(f.root, event.Name)
	if err != nil {
		return
	}
	name := filepath.ToSlash(rel)
	f.log.Debug("template changed", "template", name, "op", event.Op.String())
	f.Invalidate(name)
}

// Close stops the watcher. The loader remains usable without watching.
func (f *FS) Close() error {
	if f.watcher == nil {
		return nil
	}
	close(f.done)
	err := f.watcher.Close()
	f.watcher = nil
	return err
}

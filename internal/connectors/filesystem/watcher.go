package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docsift/internal/logger"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered.
const DefaultDebounce = 2 * time.Second

// Batch is a debounced set of changes.
type Batch struct {
	// Changed holds accepted files that were created or written.
	Changed []string

	// Removed holds paths that were deleted or renamed away.
	Removed []string
}

// Empty reports whether the batch carries no paths.
func (b Batch) Empty() bool {
	return len(b.Changed) == 0 && len(b.Removed) == 0
}

// Watcher reports debounced changes under a root directory.
type Watcher struct {
	root     string
	opts     WalkOptions
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher watches root and every non-skipped subdirectory.
func NewWatcher(root string, opts WalkOptions, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", root)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{root: root, opts: opts, debounce: debounce, watcher: fw}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers batches to fn until ctx is cancelled. fn runs on the
// watcher goroutine, so events arriving meanwhile join the next batch.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context, Batch)) error {
	defer w.watcher.Close()

	changed := make(map[string]bool)
	removed := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(ev, changed, removed) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			batch := Batch{Changed: keys(changed), Removed: keys(removed)}
			clear(changed)
			clear(removed)
			if !batch.Empty() {
				fn(ctx, batch)
			}
		}
	}
}

// handle folds one event into the pending sets, returning true when it counts.
func (w *Watcher) handle(ev fsnotify.Event, changed, removed map[string]bool) bool {
	name := filepath.Base(ev.Name)

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if w.opts.skip(name, false) {
			return false
		}
		delete(changed, ev.Name)
		removed[ev.Name] = true
		return true

	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return false
		}
		if w.opts.skip(name, info.IsDir()) {
			return false
		}
		if info.IsDir() {
			if ev.Has(fsnotify.Create) {
				if err := w.addTree(ev.Name); err != nil {
					logger.Warn("watching new directory %s: %v", ev.Name, err)
				}
			}
			return false
		}
		if w.opts.Accept != nil && !w.opts.Accept(ev.Name) {
			return false
		}
		delete(removed, ev.Name)
		changed[ev.Name] = true
		return true
	}
	return false
}

// addTree registers dir and its non-skipped subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && path != dir && w.opts.skip(d.Name(), true) {
			return fs.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

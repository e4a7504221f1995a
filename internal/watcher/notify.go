package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kennethwty/filesearch/internal/gitignore"
	"github.com/kennethwty/filesearch/internal/scanner"
)

// Watcher turns fsnotify events under one root into debounced batches.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	exclude   *gitignore.Ruleset
	skip      map[string]struct{}
	errors    chan error
	root      string
	realRoot  string
	closeOnce sync.Once
}

// New creates a Watcher. Call Add before Run.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		if resolved, err := scanner.ResolvePath(p); err == nil {
			skip[resolved] = struct{}{}
		}
	}

	return &Watcher{
		fsw:       fsw,
		debouncer: NewDebouncer(opts.DebounceWindow, opts.BatchBuffer),
		exclude:   gitignore.FromPatterns(opts.Exclude),
		skip:      skip,
		errors:    make(chan error, 10),
	}, nil
}

// Events returns the channel of debounced batches. It is closed when Run
// returns.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors. It is closed when Run returns.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Add starts watching root and every directory below it that is not
// excluded. root may also be a single file.
func (w *Watcher) Add(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return fmt.Errorf("watch %s: %w", absRoot, err)
	}
	w.root = absRoot
	w.realRoot = absRoot
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		w.realRoot = resolved
	}

	if !info.IsDir() {
		return w.fsw.Add(absRoot)
	}
	// A trailing separator makes WalkDir resolve a symlinked root.
	return w.addRecursive(absRoot + string(filepath.Separator))
}

// Run delivers events until ctx is cancelled or the underlying watcher
// fails. Cancellation is a normal stop and returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.Close() }()

	if w.root == "" {
		return errors.New("watcher: Add must be called before Run")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// Close releases the fsnotify watcher and closes both channels. Run calls
// it on return; call it directly only when Run was never started.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.debouncer.Stop()
		err = w.fsw.Close()
		close(w.errors)
	})
	return err
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if w.skipped(name) {
		return
	}

	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		rel = name
	}
	rel = filepath.ToSlash(rel)

	isDir := false
	if info, err := os.Stat(name); err == nil {
		isDir = info.IsDir()
	}
	if w.ignored(rel, isDir) {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
		if isDir {
			// A directory moved in may already hold subdirectories.
			if err := w.addRecursive(name); err != nil {
				w.emitError(err)
			}
		}
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		// Chmod only.
		return
	}

	w.debouncer.Add(FileEvent{
		Path:      rel,
		Operation: op,
		IsDir:     isDir,
		Timestamp: time.Now(),
	})
}

func (w *Watcher) addRecursive(dir string) error {
	top := filepath.Clean(dir)
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		path = filepath.Clean(path)
		if err != nil {
			if path == top {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		if path != w.root {
			if w.skipped(path) {
				return filepath.SkipDir
			}
			rel, relErr := filepath.Rel(w.root, path)
			if relErr == nil && w.ignored(filepath.ToSlash(rel), true) {
				return filepath.SkipDir
			}
		}

		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// skipped reports whether path, seen below the watched root, is a skip path.
func (w *Watcher) skipped(path string) bool {
	if len(w.skip) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	_, ok := w.skip[filepath.Join(w.realRoot, rel)]
	return ok
}

// ignored reports whether rel (slash-separated) should produce no events.
func (w *Watcher) ignored(rel string, isDir bool) bool {
	if rel == "." || rel == "" {
		return false
	}
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return true
	}
	return w.exclude.Ignored(rel, isDir)
}

func (w *Watcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
		slog.Warn("watcher error dropped", slog.String("error", err.Error()))
	}
}

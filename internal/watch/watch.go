// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reimports the well-known data files when they change on
// disk. Dropping a fresh publications.json into the data directory is
// enough to refresh the corpus; the database and model snapshots are
// deliberately not watched, since the engine rewrites those itself.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Data file names the watcher reacts to. Events for any other name in
// the directory, editor temp files included, are ignored.
const (
	PublicationsFile = "publications.json"
	TrainingFile     = "training_documents.csv"
	CategoriesFile   = "categories.csv"
)

// DefaultDebounce is how long the watcher waits after the last event for
// a file before reimporting it. Editors and crawlers tend to emit bursts
// of writes for a single save.
const DefaultDebounce = 500 * time.Millisecond

// Importer receives the reimport calls. *engine.Engine satisfies it.
type Importer interface {
	ImportPublicationsFile(ctx context.Context, path string) (int, error)
	ImportTrainingFile(ctx context.Context, path string) (int, error)
	ImportCategoriesFile(ctx context.Context, path string) (int, error)
}

// Watcher monitors one data directory and pushes changed files through
// an Importer.
type Watcher struct {
	dir      string
	importer Importer
	logger   *slog.Logger
	debounce time.Duration

	fs *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// Option adjusts a Watcher before it starts.
type Option func(*Watcher)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
	}
}

// WithDebounce sets the settle delay between the last event for a file
// and its reimport. Zero or negative keeps DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a Watcher for the given data directory and starts
// collecting its change events. The directory must already exist. Events
// queue up until Run drains them, so nothing is missed between New and
// Run.
func New(dir string, importer Importer, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	w := &Watcher{
		dir:      dir,
		importer: importer,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		fs:       fs,
		timers:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run handles change events until the context is cancelled or the
// watcher is closed. Reimports run on timer goroutines, so a slow import
// never blocks event draining.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching data directory", "dir", w.dir, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			// Renames cover the write-temp-then-rename save pattern.
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(ctx, ev.Name)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watch error", "error", err)
		}
	}
}

// Close stops the watcher and cancels any pending reimports.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()
	return w.fs.Close()
}

// schedule arms, or re-arms, the debounce timer for one data file.
func (w *Watcher) schedule(ctx context.Context, path string) {
	name := filepath.Base(path)
	if !handled(name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[name]; ok {
		t.Stop()
	}
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.reimport(ctx, name, filepath.Join(w.dir, name))
	})
}

func (w *Watcher) reimport(ctx context.Context, name, path string) {
	if ctx.Err() != nil {
		return
	}
	n, err := w.dispatch(ctx, name, path)
	if err != nil {
		w.logger.Error("reimport failed", "file", name, "error", err)
		return
	}
	w.logger.Info("data file reimported", "file", name, "records", n)
}

func (w *Watcher) dispatch(ctx context.Context, name, path string) (int, error) {
	switch name {
	case PublicationsFile:
		return w.importer.ImportPublicationsFile(ctx, path)
	case TrainingFile:
		return w.importer.ImportTrainingFile(ctx, path)
	case CategoriesFile:
		return w.importer.ImportCategoriesFile(ctx, path)
	}
	return 0, fmt.Errorf("no import action for %s", name)
}

// handled reports whether a base name is one of the watched data files.
func handled(name string) bool {
	switch name {
	case PublicationsFile, TrainingFile, CategoriesFile:
		return true
	}
	return false
}

// Package watcher keeps user templates in sync with a directory of template
// documents.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/templatefile"
)

// Importer creates and refreshes templates from files.
type Importer interface {
	ImportFile(ctx context.Context, path string) (application.CustomTemplate, error)
	ReplaceFile(ctx context.Context, id, path string) (application.CustomTemplate, error)
}

// Watcher imports template documents dropped into a directory and re-reads
// them when they change. Removing a file leaves its template in place.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	importer  Importer
	logger    *slog.Logger

	mu     sync.Mutex
	byPath map[string]string
}

// New creates a watcher for dir.
func New(dir string, importer Importer, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       dir,
		importer:  importer,
		logger:    logger.With("component", "watcher", "dir", dir),
		byPath:    make(map[string]string),
	}, nil
}

// Scan imports every supported document already present in the directory.
func (w *Watcher) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.sync(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// Run processes filesystem events until ctx is cancelled, then releases the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()
	w.logger.InfoContext(ctx, "watching templates")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.sync(ctx, event.Name)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.forget(ctx, event.Name)
	}
}

// sync imports path, or refreshes the template it produced earlier.
func (w *Watcher) sync(ctx context.Context, path string) {
	if !templatefile.Supported(path) {
		return
	}
	logger := w.logger.With("path", path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if id, ok := w.byPath[path]; ok {
		tmpl, err := w.importer.ReplaceFile(ctx, id, path)
		switch {
		case err == nil:
			logger.InfoContext(ctx, "template refreshed", "template_id", tmpl.ID)
			return
		case !errors.Is(err, application.ErrNotFound):
			logger.WarnContext(ctx, "template refresh failed", "error", err, "error_kind", application.ErrorKind(err))
			return
		}
		// The template was deleted from the library; import it again.
		delete(w.byPath, path)
	}

	tmpl, err := w.importer.ImportFile(ctx, path)
	if err != nil {
		logger.WarnContext(ctx, "template import failed", "error", err, "error_kind", application.ErrorKind(err))
		return
	}
	w.byPath[path] = tmpl.ID
	logger.InfoContext(ctx, "template imported", "template_id", tmpl.ID)
}

func (w *Watcher) forget(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id, ok := w.byPath[path]; ok {
		delete(w.byPath, path)
		w.logger.InfoContext(ctx, "template file removed", "path", path, "template_id", id)
	}
}

// TemplateID returns the template imported from path.
func (w *Watcher) TemplateID(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.byPath[path]
	return id, ok
}

// Paths lists the files currently tracked, sorted.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.byPath))
	for path := range w.byPath {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Close stops the underlying watcher without waiting for Run.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

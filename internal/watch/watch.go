// Package watch re-runs pipelines when their source files change.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ai-rules/rulekit/internal/config"
)

// DefaultDebounce is how long a file must stay quiet before a run starts.
const DefaultDebounce = 300 * time.Millisecond

// ErrNothingToWatch is returned when none of the source directories exist.
var ErrNothingToWatch = errors.New("no source directory can be watched")

// Trigger is called with the settled paths, sorted.
type Trigger func(ctx context.Context, changed []string)

// Watcher watches a fixed set of files through their parent directories.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]bool
	pending  map[string]time.Time
	debounce time.Duration
	onChange Trigger
	logger   *slog.Logger

	stats Stats
}

// Stats counts watcher activity.
type Stats struct {
	Events   int
	Triggers int
	Errors   int
}

// New creates a watcher for files. Directories that do not exist are
// skipped with a warning; at least one must be watchable.
func New(files []string, debounce time.Duration, onChange Trigger, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool),
		pending:  make(map[string]time.Time),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	watched := 0
	for _, dir := range sortedKeys(dirs) {
		if err := fw.Add(dir); err != nil {
			logger.Warn("cannot watch directory", "dir", dir, "error", err)
			continue
		}
		logger.Debug("watching directory", "dir", dir)
		watched++
	}
	if watched == 0 {
		fw.Close()
		return nil, ErrNothingToWatch
	}

	return w, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Chmod alone never changes content.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	path := filepath.Clean(event.Name)
	if !w.files[path] {
		return
	}

	w.logger.Debug("source changed", "path", path, "op", event.Op.String())

	w.mu.Lock()
	w.stats.Events++
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// flush triggers one run for every path that has been quiet for the debounce window.
func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	if len(settled) > 0 {
		w.stats.Triggers++
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	sort.Strings(settled)
	w.onChange(ctx, settled)
}

// Sources returns the files the selected pipelines read: the config file,
// every template, the prompt, and the canonical rules documents.
func Sources(cfg *config.Config, root string, build, update bool) []string {
	files := []string{filepath.Join(root, config.FileName)}

	if build {
		src := cfg.SourceDir(root)
		for _, t := range cfg.Assembler.Templates {
			files = append(files, filepath.Join(src, t.Path))
		}
		if cfg.Assembler.Prompt.Source != "" {
			files = append(files, filepath.Join(src, cfg.Assembler.Prompt.Source))
		}
		if cfg.Build.Source != "" {
			files = append(files, config.Resolve(root, cfg.Build.Source))
		}
	}
	if update && cfg.Update.Source != "" {
		files = append(files, config.Resolve(root, cfg.Update.Source))
	}

	return files
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/relay/internal/models"
	"github.com/toyz/relay/internal/utils"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to settle
const DefaultDebounce = 200 * time.Millisecond

// Watcher regenerates clients whenever Go sources of the watched packages change
type Watcher struct {
	generator   *Generator
	scanner     *DirectoryScanner
	diagnostics *utils.DiagnosticSystem
	cfg         Config
	debounce    time.Duration
	onRun       func(error)
}

// NewWatcher creates a watcher running generator with cfg
func NewWatcher(generator *Generator, cfg Config, diagnostics *utils.DiagnosticSystem) *Watcher {
	if cfg.Output == "" {
		cfg.Output = models.DefaultOutputFile
	}
	return &Watcher{
		generator:   generator,
		scanner:     NewDirectoryScanner(),
		diagnostics: diagnostics,
		cfg:         cfg,
		debounce:    DefaultDebounce,
	}
}

// SetDebounce changes the settle delay
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// OnRun registers a callback invoked after every generation
func (w *Watcher) OnRun(fn func(error)) {
	w.onRun = fn
}

// Watch generates once, then again after every relevant change, until ctx
// is done. Generation errors are reported and do not stop the watcher.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer fsw.Close()

	dirs, err := w.scanner.ScanDirectories(w.cfg.Directories)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.diagnostics.Info("watching %d package directories", len(dirs))
	w.regenerate()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				w.watchNewDirectory(fsw, event.Name)
			}
			if !w.relevant(event) {
				continue
			}
			w.diagnostics.Debug("change: %s", event)
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.diagnostics.Warn("watch error: %v", err)
		case <-timer.C:
			w.regenerate()
		}
	}
}

func (w *Watcher) regenerate() {
	err := w.generator.Run(w.cfg)
	if err == nil {
		summary := w.generator.GetSummary()
		w.diagnostics.Info("generated %d files (%d unchanged) in %s",
			len(summary.GeneratedFiles), len(summary.UnchangedFiles), summary.Duration.Round(time.Millisecond))
	}
	if w.onRun != nil {
		w.onRun(err)
	}
}

// relevant keeps writes to hand-written, non-test Go files
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}
	return name != w.cfg.Output
}

// watchNewDirectory follows directories created below a recursive root
func (w *Watcher) watchNewDirectory(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skipDir(filepath.Base(path)) {
		return
	}
	if err := fsw.Add(path); err != nil {
		w.diagnostics.Warn("failed to watch %s: %v", path, err)
		return
	}
	w.diagnostics.Verbose("watching %s", path)
}

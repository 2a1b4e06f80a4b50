// Package watch rebuilds documentation when its sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sphinxbuild/internal/build"
	"git.home.luguber.info/inful/sphinxbuild/internal/logfields"
	"git.home.luguber.info/inful/sphinxbuild/internal/sphinx"
)

// DefaultDebounce collapses bursts of file events into one rebuild.
const DefaultDebounce = 2 * time.Second

// Reason says why a rebuild was started.
type Reason string

const (
	ReasonInitial  Reason = "initial"
	ReasonChange   Reason = "change"
	ReasonSchedule Reason = "schedule"
)

// Options configure a Watcher.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Every schedules additional rebuilds; zero disables them.
	Every time.Duration
	// OnResult observes every finished rebuild.
	OnResult func(reason Reason, result *build.Result, err error)
}

// Watcher runs one initial build and rebuilds on source changes. Rebuilds are
// serialized on a single goroutine.
type Watcher struct {
	service build.Service
	inv     sphinx.Invocation
	opts    Options

	watcher *fsnotify.Watcher
	trigger chan Reason

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for the invocation's source directory.
func New(service build.Service, inv sphinx.Invocation, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		service: service,
		inv:     inv,
		opts:    opts,
		watcher: fw,
		trigger: make(chan Reason, 1),
	}, nil
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(w.inv.SourceDirectory); err != nil {
		return fmt.Errorf("failed to watch source directory %s: %w", w.inv.SourceDirectory, err)
	}
	slog.Info("Watching sources", logfields.Source(w.inv.SourceDirectory))

	if w.opts.Every > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.SchedulePeriodic(ctx, "sphinx-rebuild", w.opts.Every, func() { w.Trigger(ReasonSchedule) }); err != nil {
			_ = sched.Stop()
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Error("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	go w.watchLoop(ctx)
	defer w.stopTimer()

	w.rebuild(ctx, ReasonInitial)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping watcher")
			return nil
		case reason := <-w.trigger:
			w.rebuild(ctx, reason)
		}
	}
}

// Trigger requests a rebuild. Requests made while one is pending are merged.
func (w *Watcher) Trigger(reason Reason) {
	select {
	case w.trigger <- reason:
	default:
	}
}

func (w *Watcher) rebuild(ctx context.Context, reason Reason) {
	slog.Info("Rebuilding documentation", slog.String("reason", string(reason)))
	result, err := w.service.Run(ctx, w.inv)
	if err != nil {
		slog.Error("Rebuild failed", slog.String("reason", string(reason)), logfields.Error(err))
	}
	if w.opts.OnResult != nil {
		w.opts.OnResult(reason, result, err)
	}
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				slog.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				w.debounce()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Source watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() { w.Trigger(ReasonChange) })
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// ignored filters hidden entries, editor temporaries and anything sphinx-build
// itself writes when the output lives inside the source tree.
func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") {
		return true
	}
	for _, dir := range []string{w.inv.OutputDirectory, w.inv.IntermediateDirectory} {
		if dir != "" && within(path, dir) {
			return true
		}
	}
	return false
}

func within(path, dir string) bool {
	absPath, err1 := filepath.Abs(path)
	absDir, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

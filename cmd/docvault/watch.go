package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron"
	"github.com/poiesic/docvault/config"
	"github.com/poiesic/docvault/pipeline"
	"github.com/urfave/cli/v2"
	"github.com/viant/afs/url"
)

const defaultSettle = 2 * time.Second

type sweeper interface {
	Sweep(ctx context.Context) (*pipeline.Report, error)
}

// watcher runs sweeps on a schedule and, optionally, after file system
// events in a local unprocessed area. Sweeps never overlap.
type watcher struct {
	sweeper sweeper
	out     io.Writer
	logger  *slog.Logger
	settle  time.Duration
	trigger chan struct{}
}

func newWatcher(s sweeper, out io.Writer, logger *slog.Logger) *watcher {
	return &watcher{
		sweeper: s,
		out:     out,
		logger:  logger.With("component", "watch"),
		settle:  defaultSettle,
		trigger: make(chan struct{}, 1),
	}
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ing, err := openIngestor(c, cfg)
	if err != nil {
		return err
	}
	defer ing.Close()

	notifyDir := ""
	if c.Bool("notify") {
		root := ing.Vault().UnprocessedRoot()
		if !isLocal(root) {
			return fmt.Errorf("--notify needs a local vault, got %s", root)
		}
		if err := ing.Init(c.Context); err != nil {
			return err
		}
		notifyDir = url.Path(root)
	}

	return newWatcher(ing, c.App.Writer, slog.Default()).run(c.Context, cfg.Watch.Interval, notifyDir)
}

func isLocal(root string) bool {
	return !strings.Contains(root, "://") || strings.HasPrefix(root, "file://")
}

// run blocks until ctx is cancelled.
func (w *watcher) run(ctx context.Context, interval time.Duration, notifyDir string) error {
	if interval <= 0 {
		interval = config.DefaultWatchPeriod
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()
	if _, err := scheduler.Every(interval).Tag("sweep").Do(w.sweep, ctx); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	if notifyDir != "" {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch %s: %w", notifyDir, err)
		}
		defer fsw.Close()
		if err := addTree(fsw, notifyDir); err != nil {
			return fmt.Errorf("watch %s: %w", notifyDir, err)
		}
		go w.forward(ctx, fsw)
		go w.triggered(ctx)
	}

	w.logger.Info("watching vault", "interval", interval, "notify", notifyDir != "")
	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	w.logger.Info("watch stopped")
	return nil
}

func (w *watcher) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.logger.Error("sweep failed", "err", err)
		return
	}
	if len(report.Files) > 0 {
		fmt.Fprintln(w.out, report.String())
	}
}

// forward turns file system events into sweep triggers.
func (w *watcher) forward(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Has(fsnotify.Create) {
				// new subdirectories are not watched automatically
				_ = addTree(fsw, event.Name)
			}
			select {
			case w.trigger <- struct{}{}:
			default:
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "err", err)
		}
	}
}

// triggered waits for writes to settle before sweeping.
func (w *watcher) triggered(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.settle):
		}
		// drain events that arrived while settling
		select {
		case <-w.trigger:
		default:
		}
		w.logger.Debug("sweep triggered by file event")
		w.sweep(ctx)
	}
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

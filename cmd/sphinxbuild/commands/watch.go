package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sphinxbuild/internal/build"
	"git.home.luguber.info/inful/sphinxbuild/internal/config"
	"git.home.luguber.info/inful/sphinxbuild/internal/metrics"
	"git.home.luguber.info/inful/sphinxbuild/internal/watch"
)

// WatchCmd keeps the documentation up to date while sources are edited.
type WatchCmd struct {
	SphinxFlags `embed:""`

	Every         time.Duration `name:"every" help:"Also rebuild on this interval (e.g. 15m); 0 disables"`
	Debounce      time.Duration `name:"debounce" default:"2s" help:"Quiet period after a change before rebuilding"`
	MetricsListen string        `name:"metrics-listen" help:"Serve Prometheus metrics on this address (overrides metrics.listen)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, &w.SphinxFlags)
	if err != nil {
		return err
	}
	if w.MetricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = w.MetricsListen
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunWatch(ctx, cfg, watch.Options{Every: w.Every, Debounce: w.Debounce})
}

// RunWatch blocks until ctx is cancelled.
func RunWatch(ctx context.Context, cfg *config.Config, opts watch.Options) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		srv := &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           metrics.NewServeMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("Serving metrics", "listen", cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	svc, cleanup := newService(cfg, recorder)
	defer cleanup()

	opts.OnResult = func(reason watch.Reason, result *build.Result, err error) {
		if err == nil && result != nil {
			slog.Info("Documentation updated", "reason", reason, "artifact_root", result.ArtifactRoot, "duration", result.Duration)
		}
	}

	w, err := watch.New(svc, cfg.Invocation(), opts)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

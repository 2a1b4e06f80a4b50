package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sphinxbuild/internal/build"
	"git.home.luguber.info/inful/sphinxbuild/internal/config"
	"git.home.luguber.info/inful/sphinxbuild/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SphinxFlags `embed:""`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, &b.SphinxFlags)
	if err != nil {
		return err
	}
	// sphinx-build is never cancelled; a signal only stops us from starting another run
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	_, err = RunBuild(ctx, cfg)
	return err
}

// RunBuild performs one invocation with the wiring described by cfg.
func RunBuild(ctx context.Context, cfg *config.Config) (*build.Result, error) {
	svc, cleanup := newService(cfg, metrics.NoopRecorder{})
	defer cleanup()

	result, err := svc.Run(ctx, cfg.Invocation())
	if err != nil {
		return result, err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Sphinx build completed: %s\n", result.ArtifactRoot)
	return result, nil
}

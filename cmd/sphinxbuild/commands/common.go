package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sphinxbuild/internal/build"
	"git.home.luguber.info/inful/sphinxbuild/internal/config"
	"git.home.luguber.info/inful/sphinxbuild/internal/history"
	"git.home.luguber.info/inful/sphinxbuild/internal/metrics"
	"git.home.luguber.info/inful/sphinxbuild/internal/notify"
)

// LogLevelEnvVar selects the log level when --verbose is not given.
const LogLevelEnvVar = "SPHINXBUILD_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sphinxbuild.yaml" env:"SPHINXBUILD_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"withargs" help:"Run sphinx-build once"`
	Report  ReportCmd  `cmd:"" help:"Generate the Sphinx report through the host report contract"`
	Args    ArgsCmd    `cmd:"" help:"Print the sphinx-build command line without running it"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild whenever the documentation sources change"`
	History HistoryCmd `cmd:"" help:"List recent sphinx-build invocations"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel honours --verbose first, then SPHINXBUILD_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnvVar))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SphinxFlags override the sphinx section of the configuration file.
type SphinxFlags struct {
	Source           string   `name:"source" short:"s" help:"Sphinx source directory" env:"SPHINX_SOURCE_DIRECTORY"`
	Output           string   `name:"output" short:"o" help:"Output directory; artifacts land in <output>/<builder>" env:"SPHINX_OUTPUT_DIRECTORY"`
	Intermediate     string   `name:"intermediate" help:"Working directory for sphinx-build" env:"SPHINX_INTERMEDIATE_DIRECTORY"`
	Builder          string   `name:"builder" short:"b" help:"Sphinx builder (html, latex, man, ...)" env:"SPHINX_BUILDER"`
	Tags             []string `name:"tag" short:"t" help:"Sphinx tag, repeatable; order is kept" env:"SPHINX_TAGS" sep:","`
	Quiet            bool     `name:"quiet" short:"q" help:"Pass -Q instead of -v to sphinx-build" env:"SPHINX_QUIET"`
	WarningsAsErrors bool     `name:"warnings-as-errors" short:"W" help:"Turn sphinx warnings into errors" env:"SPHINX_WARNINGS_AS_ERRORS"`
	Force            bool     `name:"force" short:"f" help:"Rebuild everything from a fresh environment" env:"SPHINX_FORCE"`
	Executable       string   `name:"executable" help:"sphinx-build executable" env:"SPHINX_EXECUTABLE"`
}

// Apply overrides cfg with every flag that was set. Relative flag paths are
// taken relative to the current directory, not base_dir.
func (f *SphinxFlags) Apply(cfg *config.Config) {
	s := &cfg.Sphinx
	if f.Source != "" {
		s.SourceDirectory = absFlagPath(f.Source)
	}
	if f.Output != "" {
		s.OutputDirectory = absFlagPath(f.Output)
	}
	if f.Intermediate != "" {
		s.IntermediateDirectory = absFlagPath(f.Intermediate)
	}
	if f.Builder != "" {
		s.Builder = f.Builder
	}
	if len(f.Tags) > 0 {
		s.Tags = append([]string(nil), f.Tags...)
	}
	if f.Quiet {
		verbose := false
		s.Verbose = &verbose
	}
	if f.WarningsAsErrors {
		s.WarningsAsErrors = true
	}
	if f.Force {
		s.Force = true
	}
	if f.Executable != "" {
		s.Executable = f.Executable
		if strings.ContainsRune(f.Executable, '/') || strings.ContainsRune(f.Executable, filepath.Separator) {
			s.Executable = absFlagPath(f.Executable)
		}
	}
}

func absFlagPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// loadConfig reads the configuration (defaults when absent) and applies flag overrides.
func loadConfig(root *CLI, flags *SphinxFlags) (*config.Config, error) {
	cfg, err := config.LoadOptional(root.Config)
	if err != nil {
		return nil, err
	}
	if flags != nil {
		flags.Apply(cfg)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newService wires the optional history store and event publisher into a build service.
// The returned cleanup releases them.
func newService(cfg *config.Config, recorder metrics.Recorder) (*build.DefaultService, func()) {
	svc := build.NewService().WithRecorder(recorder)
	var closers []func()

	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.HistoryPath())
		if err != nil {
			slog.Warn("Invocation history disabled", "path", cfg.HistoryPath(), "error", err)
		} else {
			svc.WithHistory(store)
			closers = append(closers, func() { _ = store.Close() })
		}
	}

	if cfg.Notify.Enabled {
		publisher, err := notify.NewNATSPublisher(&cfg.Notify)
		if err != nil {
			slog.Warn("Invocation events disabled", "url", cfg.Notify.NATSURL, "error", err)
		} else {
			svc.WithPublisher(publisher)
			closers = append(closers, publisher.Close)
		}
	}

	return svc, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

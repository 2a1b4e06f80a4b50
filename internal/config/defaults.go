package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sphinxbuild/internal/sphinx"
)

// Default locations, relative to BaseDir.
const (
	DefaultSourceDirectory       = "src/site/sphinx"
	DefaultOutputDirectory       = "target/site"
	DefaultIntermediateDirectory = "target/sphinx"
	DefaultHistoryPath           = "target/sphinx/.sphinxbuild/history.db"
	DefaultReportIdentity        = "Sphinx"
	DefaultNATSURL               = "nats://127.0.0.1:4222"
	DefaultNotifySubject         = "sphinxbuild.invocations"
	DefaultMetricsListen         = "127.0.0.1:9464"
)

// ExecutableEnvVar overrides the sphinx-build executable, as in Sphinx generated Makefiles.
const ExecutableEnvVar = "SPHINXBUILD"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SphinxDefaultApplier handles Sphinx invocation defaults.
type SphinxDefaultApplier struct{}

func (s *SphinxDefaultApplier) Domain() string { return "sphinx" }

func (s *SphinxDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "."
	}
	if cfg.Sphinx.SourceDirectory == "" {
		cfg.Sphinx.SourceDirectory = DefaultSourceDirectory
	}
	if cfg.Sphinx.OutputDirectory == "" {
		cfg.Sphinx.OutputDirectory = DefaultOutputDirectory
	}
	if cfg.Sphinx.IntermediateDirectory == "" {
		cfg.Sphinx.IntermediateDirectory = DefaultIntermediateDirectory
	}
	if cfg.Sphinx.Builder == "" {
		cfg.Sphinx.Builder = sphinx.DefaultBuilder
	}
	if cfg.Sphinx.Verbose == nil {
		verbose := true
		cfg.Sphinx.Verbose = &verbose
	}
	if cfg.Sphinx.Executable == "" {
		if fromEnv := os.Getenv(ExecutableEnvVar); fromEnv != "" {
			cfg.Sphinx.Executable = fromEnv
		} else {
			cfg.Sphinx.Executable = sphinx.DefaultExecutable
		}
	}
	return nil
}

// ReportDefaultApplier handles report identity defaults.
type ReportDefaultApplier struct{}

func (r *ReportDefaultApplier) Domain() string { return "report" }

func (r *ReportDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, field := range []*string{&cfg.Report.OutputName, &cfg.Report.Category, &cfg.Report.Name, &cfg.Report.Description} {
		if *field == "" {
			*field = DefaultReportIdentity
		}
	}
	return nil
}

// HistoryDefaultApplier handles invocation history defaults.
type HistoryDefaultApplier struct{}

func (h *HistoryDefaultApplier) Domain() string { return "history" }

func (h *HistoryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	return nil
}

// NotifyDefaultApplier handles event publishing defaults.
type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.NATSURL == "" {
		cfg.Notify.NATSURL = DefaultNATSURL
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	return nil
}

// MetricsDefaultApplier handles metrics endpoint defaults.
type MetricsDefaultApplier struct{}

func (m *MetricsDefaultApplier) Domain() string { return "metrics" }

func (m *MetricsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		&SphinxDefaultApplier{},
		&ReportDefaultApplier{},
		&HistoryDefaultApplier{},
		&NotifyDefaultApplier{},
		&MetricsDefaultApplier{},
	}
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns p anchored at BaseDir unless it is already absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

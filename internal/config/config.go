package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "sphinxbuild.yaml"

// Config represents the application configuration.
type Config struct {
	// BaseDir anchors every relative path below. Defaults to the config file's directory.
	BaseDir string        `yaml:"base_dir,omitempty"`
	Sphinx  SphinxConfig  `yaml:"sphinx"`
	Report  ReportConfig  `yaml:"report"`
	History HistoryConfig `yaml:"history"`
	Notify  NotifyConfig  `yaml:"notify"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SphinxConfig describes one sphinx-build invocation.
type SphinxConfig struct {
	SourceDirectory       string            `yaml:"source_directory"`
	OutputDirectory       string            `yaml:"output_directory"`
	IntermediateDirectory string            `yaml:"intermediate_directory"`
	Builder               string            `yaml:"builder"`
	Tags                  []string          `yaml:"tags,omitempty"`
	Verbose               *bool             `yaml:"verbose,omitempty"`
	WarningsAsErrors      bool              `yaml:"warnings_as_errors"`
	Force                 bool              `yaml:"force"`
	Executable            string            `yaml:"executable,omitempty"`
	Env                   map[string]string `yaml:"env,omitempty"`
}

// IsVerbose reports the effective verbose setting (default true).
func (s SphinxConfig) IsVerbose() bool {
	return s.Verbose == nil || *s.Verbose
}

// ReportConfig holds the identity strings shown by the host for the report.
type ReportConfig struct {
	OutputName  string `yaml:"output_name"`
	Category    string `yaml:"category"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// HistoryConfig controls the invocation history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// NotifyConfig controls invocation event publishing.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig controls the Prometheus endpoint served by the watch command.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Load loads configuration from the specified file. A missing file is an error.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, ferrors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := parse(data, filepath.Dir(configPath))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional behaves like Load but falls back to defaults when the file is absent.
func LoadOptional(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if envErr := loadEnvFile(); envErr != nil {
			slog.Debug("No .env file loaded", "error", envErr)
		}
		slog.Debug("Configuration file not found, using defaults", "path", configPath)
		cfg := &Config{}
		if err := ApplyDefaults(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(configPath)
}

// Parse decodes YAML configuration, expanding environment variables and applying defaults.
// Relative base_dir values are kept as written.
func Parse(data []byte) (*Config, error) {
	return parse(data, "")
}

func parse(data []byte, configDir string) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}

	// base_dir is relative to the file that declares it
	if configDir != "" {
		switch {
		case cfg.BaseDir == "":
			cfg.BaseDir = configDir
		case !filepath.IsAbs(cfg.BaseDir):
			cfg.BaseDir = filepath.Join(configDir, cfg.BaseDir)
		}
	}

	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

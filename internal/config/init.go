package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
)

// Example returns the configuration written by Init.
func Example() *Config {
	verbose := true
	return &Config{
		BaseDir: ".",
		Sphinx: SphinxConfig{
			SourceDirectory:       DefaultSourceDirectory,
			OutputDirectory:       DefaultOutputDirectory,
			IntermediateDirectory: DefaultIntermediateDirectory,
			Builder:               "html",
			Tags:                  []string{},
			Verbose:               &verbose,
		},
		Report: ReportConfig{
			OutputName:  DefaultReportIdentity,
			Category:    DefaultReportIdentity,
			Name:        DefaultReportIdentity,
			Description: DefaultReportIdentity,
		},
		History: HistoryConfig{Path: DefaultHistoryPath},
		Notify:  NotifyConfig{NATSURL: DefaultNATSURL, Subject: DefaultNotifySubject},
		Metrics: MetricsConfig{Listen: DefaultMetricsListen},
	}
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Fatal().Build()
	}

	// #nosec G306 -- configuration is not secret
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}

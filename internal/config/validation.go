package config

import (
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
)

// ValidateConfig checks the configuration after defaults have been applied.
// Filesystem checks are left to sphinx.Invocation.Validate, which runs right before launch.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return ferrors.ConfigError("configuration is required").Build()
	}
	if strings.TrimSpace(cfg.Sphinx.Builder) == "" {
		return ferrors.ValidationError("sphinx.builder must not be empty").Build()
	}
	for i, tag := range cfg.Sphinx.Tags {
		if strings.TrimSpace(tag) == "" {
			return ferrors.ValidationError(fmt.Sprintf("sphinx.tags[%d] must not be empty", i)).Build()
		}
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		return ferrors.ValidationError("history.path is required when history is enabled").Build()
	}
	if cfg.Notify.Enabled {
		if cfg.Notify.NATSURL == "" {
			return ferrors.ValidationError("notify.nats_url is required when notify is enabled").Build()
		}
		if cfg.Notify.Subject == "" {
			return ferrors.ValidationError("notify.subject is required when notify is enabled").Build()
		}
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return ferrors.ValidationError("metrics.listen is required when metrics are enabled").Build()
	}
	return nil
}

// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for vmman.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultBackendModule = "sqlitecloud"
	defaultConfirmTTL    = 10 * time.Minute
)

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// LogLevel sets the log threshold: debug, info, warn, or error.
	// Empty means info.
	LogLevel string `yaml:"log_level,omitempty"`

	// Oracle selects the language-model module the pipeline consults.
	Oracle OracleSection `yaml:"oracle"`

	// Backend selects the cloud backend module and carries its settings.
	Backend BackendSection `yaml:"backend,omitempty"`

	// Pipeline tunes parameter resolution.
	Pipeline PipelineSection `yaml:"pipeline,omitempty"`

	// Confirmations controls the pending-confirmation store.
	Confirmations ConfirmSection `yaml:"confirmations,omitempty"`

	// DefaultParameters overlays the built-in per-operation defaults
	// consulted when a caller answers "default" during solicitation.
	// Keys are operation names mapping parameter name to value.
	DefaultParameters map[string]map[string]any `yaml:"default_parameters,omitempty"`

	// Gateway is the HTTP gateway subtree, decoded by internal/gateway.
	// The gateway stays off while the section is absent.
	Gateway yaml.Node `yaml:"gateway,omitempty"`

	// Cron is the scheduler module subtree. The scheduler always loads;
	// this section overrides its job schedules.
	Cron yaml.Node `yaml:"cron,omitempty"`

	// Telemetry controls trace export.
	Telemetry TelemetrySection `yaml:"telemetry,omitempty"`
}

// OracleSection names the oracle module and carries its raw config.
type OracleSection struct {
	// Provider is the module suffix: "gemini", "anthropic", or "openai".
	Provider string `yaml:"provider"`

	// Config is handed to the module's Configure untouched.
	Config yaml.Node `yaml:"config,omitempty"`
}

// ModuleID returns the registry ID of the selected oracle module.
func (s OracleSection) ModuleID() string {
	return "oracle." + s.Provider
}

// BackendSection names the backend module and carries its raw config.
type BackendSection struct {
	// Module is the module suffix. Empty means sqlitecloud.
	Module string `yaml:"module,omitempty"`

	// Config is handed to the module's Configure untouched.
	Config yaml.Node `yaml:"config,omitempty"`
}

// ModuleID returns the registry ID of the selected backend module.
func (s BackendSection) ModuleID() string {
	if s.Module == "" {
		return "backend." + defaultBackendModule
	}
	return "backend." + s.Module
}

// PipelineSection tunes the resolver.
type PipelineSection struct {
	// MaxSolicitAttempts bounds re-prompting per parameter in
	// interactive mode. Zero keeps the resolver default.
	MaxSolicitAttempts int `yaml:"max_solicit_attempts,omitempty"`

	// PlaceholderMarkers adds placeholder prefixes to the built-in
	// rejection set.
	PlaceholderMarkers []string `yaml:"placeholder_markers,omitempty"`
}

// ConfirmSection controls pending-confirmation lifetimes.
type ConfirmSection struct {
	// TTL is how long an unconsumed confirmation token stays
	// redeemable, as a Go duration string. Empty means 10m.
	TTL string `yaml:"ttl,omitempty"`
}

// ParsedTTL returns the configured TTL or the default.
func (s ConfirmSection) ParsedTTL() (time.Duration, error) {
	if s.TTL == "" {
		return defaultConfirmTTL, nil
	}
	d, err := time.ParseDuration(s.TTL)
	if err != nil {
		return 0, fmt.Errorf("config: confirmations.ttl: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: confirmations.ttl must be positive, got %s", d)
	}
	return d, nil
}

// TelemetrySection controls OTLP trace export.
type TelemetrySection struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`

	// SampleRate is the head-sampling ratio in [0, 1].
	SampleRate float64 `yaml:"sample_rate,omitempty"`
}

// Level maps the configured log_level onto slog.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

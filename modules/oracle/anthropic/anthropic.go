// Package anthropic implements the oracle.anthropic module, bridging the
// command pipeline to the Anthropic Messages API.
package anthropic

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"gopkg.in/yaml.v3"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
)

func init() {
	core.RegisterModule(&Oracle{})
}

// Interface guards.
var (
	_ core.Module          = (*Oracle)(nil)
	_ core.Configurable    = (*Oracle)(nil)
	_ core.Provisioner     = (*Oracle)(nil)
	_ core.Validator       = (*Oracle)(nil)
	_ core.Reloader        = (*Oracle)(nil)
	_ oracle.Oracle        = (*Oracle)(nil)
	_ oracle.HealthChecker = (*Oracle)(nil)
)

// Oracle is the oracle.anthropic module. It implements oracle.Oracle and
// oracle.HealthChecker using the Anthropic Messages API.
type Oracle struct {
	mu     sync.RWMutex
	config Config
	client *sdkanthropic.Client
	logger *slog.Logger
}

// snapshot returns the current config and SDK client. Completions in
// flight keep the pair they started with across a concurrent reload.
func (a *Oracle) snapshot() (Config, *sdkanthropic.Client) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config, a.client
}

// ModuleInfo implements core.Module.
func (a *Oracle) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "oracle.anthropic",
		New: func() core.Module { return &Oracle{} },
	}
}

// Configure implements core.Configurable.
func (a *Oracle) Configure(node *yaml.Node) error {
	if err := node.Decode(&a.config); err != nil {
		return err
	}
	a.config.defaults()
	return nil
}

// buildClient assembles an SDK client from the config. The API key in
// the config takes precedence over the ANTHROPIC_API_KEY environment
// variable.
func buildClient(cfg Config) *sdkanthropic.Client {
	apiKey := cfg.APIKey
	if apiKey == "" {
		if envKey, ok := os.LookupEnv("ANTHROPIC_API_KEY"); ok {
			apiKey = envKey
		}
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// Each inference pass is single-shot; no SDK-level retries.
	opts = append(opts, option.WithMaxRetries(0))

	client := sdkanthropic.NewClient(opts...)
	return &client
}

// Provision implements core.Provisioner.
func (a *Oracle) Provision(ctx *core.AppContext) error {
	a.logger = ctx.Logger
	a.client = buildClient(a.config)

	ctx.RegisterService("oracle.anthropic", a)
	ctx.RegisterService("oracle.provider", a)

	return nil
}

// Validate implements core.Validator.
func (a *Oracle) Validate() error {
	if a.config.Model == "" {
		return errors.New("oracle.anthropic: model must not be empty")
	}
	if a.client == nil {
		return errors.New("oracle.anthropic: client not initialized (Provision not called)")
	}
	return nil
}

// Reload implements core.Reloader. It re-reads the module's config
// section and rebuilds the SDK client so the API key, model and base
// URL can rotate without a restart.
func (a *Oracle) Reload(ctx *core.AppContext) error {
	node, ok := ctx.ModuleConfig("oracle.anthropic")
	if !ok {
		return nil
	}

	var cfg Config
	if err := node.Decode(&cfg); err != nil {
		return err
	}
	cfg.defaults()

	a.mu.Lock()
	a.config = cfg
	a.client = buildClient(cfg)
	a.mu.Unlock()

	a.logger.Info("oracle config reloaded", "model", cfg.Model)
	return nil
}

// Name implements oracle.Oracle.
func (a *Oracle) Name() string {
	return "anthropic"
}

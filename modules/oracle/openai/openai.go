// Package openai implements the oracle.openai module, backing the command
// pipeline's inference passes with the OpenAI Chat Completions API.
package openai

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Oracle{})
}

// Compile-time interface guards.
var (
	_ oracle.Oracle        = (*Oracle)(nil)
	_ oracle.HealthChecker = (*Oracle)(nil)
	_ core.Module          = (*Oracle)(nil)
	_ core.Configurable    = (*Oracle)(nil)
	_ core.Provisioner     = (*Oracle)(nil)
	_ core.Validator       = (*Oracle)(nil)
	_ core.Reloader        = (*Oracle)(nil)
)

// Oracle implements the OpenAI Chat Completions API as a vmman oracle module.
type Oracle struct {
	mu     sync.RWMutex
	config Config
	logger *slog.Logger
	client *http.Client
}

// snapshot returns the current config and HTTP client. Completions in
// flight keep the pair they started with across a concurrent reload.
func (o *Oracle) snapshot() (Config, *http.Client) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.config, o.client
}

// ModuleInfo implements core.Module.
func (o *Oracle) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "oracle.openai",
		New: func() core.Module { return &Oracle{} },
	}
}

// Configure implements core.Configurable.
func (o *Oracle) Configure(node *yaml.Node) error {
	if err := node.Decode(&o.config); err != nil {
		return err
	}
	o.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (o *Oracle) Provision(ctx *core.AppContext) error {
	o.logger = ctx.Logger

	o.client = &http.Client{
		Timeout: o.config.parsedTimeout(),
	}

	// Register under the module's own name and as the active provider.
	// When several oracle modules load, the last one in config order wins
	// the "oracle.provider" slot.
	ctx.RegisterService("oracle.openai", o)
	ctx.RegisterService("oracle.provider", o)

	return nil
}

// Validate implements core.Validator.
func (o *Oracle) Validate() error {
	if o.config.APIKey == "" {
		return errors.New("oracle.openai: api_key is required")
	}
	if o.config.Model == "" {
		return errors.New("oracle.openai: model is required")
	}
	if err := o.config.validateTimeout(); err != nil {
		return err
	}
	return nil
}

// Reload implements core.Reloader. It re-reads the module's config
// section so the API key, model and timeout can rotate without a
// restart. A config that fails validation leaves the running one in
// place.
func (o *Oracle) Reload(ctx *core.AppContext) error {
	node, ok := ctx.ModuleConfig("oracle.openai")
	if !ok {
		return nil
	}

	var cfg Config
	if err := node.Decode(&cfg); err != nil {
		return err
	}
	cfg.defaults()
	if cfg.APIKey == "" {
		return errors.New("oracle.openai: api_key is required")
	}
	if err := cfg.validateTimeout(); err != nil {
		return err
	}

	o.mu.Lock()
	o.config = cfg
	o.client = &http.Client{Timeout: cfg.parsedTimeout()}
	o.mu.Unlock()

	o.logger.Info("oracle config reloaded", "model", cfg.Model)
	return nil
}

// Name implements oracle.Oracle.
func (o *Oracle) Name() string {
	return "openai"
}

// Package reload applies configuration changes to a running process.
// The Handler re-reads and re-validates the config file, pushes new
// sections into modules that implement core.Reloader, and rebuilds the
// components derived from config. The Watcher polls the file and
// triggers the handler when it changes.
package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/config"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
)

// RebuildFunc reassembles components derived from config after the
// modules have reloaded. The daemon uses it to rebuild the pipeline
// around whatever services the reloaded modules re-registered.
type RebuildFunc func(ctx context.Context, cfg *config.Config) error

// Options configures a Handler.
type Options struct {
	// App holds the loaded modules. Reload is forwarded to every module
	// implementing core.Reloader.
	App *core.App

	// AppCtx is the process AppContext. Each reload derives a copy
	// carrying the new per-module config sections.
	AppCtx *core.AppContext

	// ConfigPath is the file to re-read on each reload.
	ConfigPath string

	// LogLevel, when set, is adjusted to the new config's log_level.
	LogLevel *slog.LevelVar

	// Rebuild, when set, runs after the modules have reloaded.
	Rebuild RebuildFunc

	Logger *slog.Logger
}

// Handler re-applies configuration to a running process. Reloads are
// serialized behind a mutex: SIGHUP, the file watcher and the gateway's
// admin endpoint may all fire at once.
type Handler struct {
	mu   sync.Mutex
	opts Options
}

// NewHandler creates a reload handler.
func NewHandler(opts Options) (*Handler, error) {
	if opts.App == nil {
		return nil, errors.New("reload: App is required")
	}
	if opts.AppCtx == nil {
		return nil, errors.New("reload: AppCtx is required")
	}
	if opts.ConfigPath == "" {
		return nil, errors.New("reload: ConfigPath is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{opts: opts}, nil
}

// Reload re-reads the config file, re-validates it, hands the new
// sections to modules implementing core.Reloader, and runs the rebuild
// callback. A config that fails to load or validate leaves the running
// configuration untouched.
func (h *Handler) Reload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	cfg, err := config.Load(h.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	if h.opts.LogLevel != nil {
		h.opts.LogLevel.Set(cfg.Level())
	}

	appCtx := h.opts.AppCtx.WithModuleConfigs(config.ModuleConfigs(cfg))
	if err := h.opts.App.ReloadModules(appCtx); err != nil {
		return fmt.Errorf("reload: %w", err)
	}

	if h.opts.Rebuild != nil {
		if err := h.opts.Rebuild(ctx, cfg); err != nil {
			return fmt.Errorf("reload: rebuild: %w", err)
		}
	}

	h.opts.Logger.Info("configuration reloaded", "path", h.opts.ConfigPath)
	return nil
}

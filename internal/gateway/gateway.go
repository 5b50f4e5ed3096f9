// Package gateway serves the command pipeline over HTTP: the JSON command
// endpoint, a WebSocket stream for remote clients, and the operational
// surface (health, readiness, status, Prometheus metrics, config reload).
// It binds to loopback by default and only loads when the config file
// carries a gateway section.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/confirm"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Gateway)(nil)
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// CommandHandler runs one request through the command pipeline.
// *pipeline.Pipeline implements it; tests substitute a stub.
type CommandHandler interface {
	Handle(ctx context.Context, req envelope.Request, opts pipeline.HandleOptions) envelope.Response
}

// Reloader re-reads the configuration on demand. The runtime registers
// one under the "reload.handler" service name.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Gateway is the HTTP server module.
type Gateway struct {
	config Config
	appCtx *core.AppContext
	logger *slog.Logger

	// Collaborators resolved from the service registry at Start. Any of
	// them may be absent; the affected endpoints degrade to 503.
	pipe     CommandHandler
	registry *capability.Registry
	store    *confirm.Store
	oracle   oracle.Oracle
	reloader Reloader
	promReg  *prometheus.Registry

	counters  *Counters
	metrics   *serverMetrics
	server    *http.Server
	startedAt time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if node != nil {
		if err := node.Decode(&g.config); err != nil {
			return fmt.Errorf("gateway: decode config: %w", err)
		}
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.counters = &Counters{}
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	return g.config.validate()
}

// Start implements core.Starter. Collaborators are resolved here rather
// than in Provision because the pipeline is assembled after the modules.
func (g *Gateway) Start() error {
	g.resolveServices()
	g.metrics = newServerMetrics(g.promReg)

	g.baseCtx, g.baseCancel = context.WithCancel(context.Background())

	var lc net.ListenConfig
	ln, err := lc.Listen(g.baseCtx, "tcp", g.config.Bind)
	if err != nil {
		g.baseCancel()
		return fmt.Errorf("gateway: listen on %s: %w", g.config.Bind, err)
	}

	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}
	g.startedAt = time.Now()

	go func() {
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway: serve failed", "error", err)
		}
	}()

	g.logger.Info("gateway listening",
		"addr", ln.Addr().String(),
		"auth", g.config.Auth.Enabled(),
	)
	return nil
}

// Stop implements core.Stopper. WebSocket loops watch the base context,
// so canceling it first lets Shutdown drain the remaining requests.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	if g.baseCancel != nil {
		g.baseCancel()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	if err := g.server.Shutdown(shutdownCtx); err != nil {
		g.logger.Warn("gateway: graceful shutdown failed, closing", "error", err)
		return g.server.Close()
	}
	g.logger.Info("gateway stopped")
	return nil
}

// resolveServices picks the gateway's collaborators out of the service
// registry. Missing services are logged, not fatal: a partially wired
// runtime still serves health and metrics.
func (g *Gateway) resolveServices() {
	if svc, ok := g.appCtx.GetService("pipeline"); ok {
		if h, ok := svc.(CommandHandler); ok {
			g.pipe = h
		}
	}
	if g.pipe == nil {
		g.logger.Warn("gateway: pipeline service missing, command endpoints disabled")
	}

	if svc, ok := g.appCtx.GetService("capability.registry"); ok {
		if reg, ok := svc.(*capability.Registry); ok {
			g.registry = reg
		}
	}
	if svc, ok := g.appCtx.GetService("confirm.store"); ok {
		if st, ok := svc.(*confirm.Store); ok {
			g.store = st
		}
	}
	if svc, ok := g.appCtx.GetService("oracle.provider"); ok {
		if o, ok := svc.(oracle.Oracle); ok {
			g.oracle = o
		}
	}
	if svc, ok := g.appCtx.GetService("reload.handler"); ok {
		if r, ok := svc.(Reloader); ok {
			g.reloader = r
		}
	}
	if svc, ok := g.appCtx.GetService("metrics.registry"); ok {
		if reg, ok := svc.(*prometheus.Registry); ok {
			g.promReg = reg
		}
	}
	if g.promReg == nil {
		g.promReg = prometheus.NewRegistry()
	}
}

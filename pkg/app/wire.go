package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/config"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/confirm"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/executor"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/intent"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/reload"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/resolve"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/telemetry"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// Mode selects how much of the runtime Build assembles.
type Mode int

const (
	// ModeLocal loads the backend and oracle modules only: enough to run
	// the pipeline in-process without listeners or background jobs.
	ModeLocal Mode = iota

	// ModeDaemon loads every module the config resolves, including the
	// scheduler and the gateway, and arms the reload handler.
	ModeDaemon
)

// closeTimeout bounds the telemetry flush during Close.
const closeTimeout = 5 * time.Second

// CommandHandler is the pipeline surface the binaries call. The runtime's
// handler stays valid across config reloads.
type CommandHandler interface {
	Handle(ctx context.Context, req envelope.Request, opts pipeline.HandleOptions) envelope.Response
}

// Runtime is an assembled application. Callers Start it, use the Pipeline,
// and Close it when done.
type Runtime struct {
	App        *core.App
	AppCtx     *core.AppContext
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Registry   *capability.Registry
	Pipeline   CommandHandler

	levelVar  *slog.LevelVar
	reloader  *reload.Handler
	telemetry *telemetry.Provider
}

// Start brings the loaded modules up.
func (rt *Runtime) Start() error {
	return rt.App.Start()
}

// Reload re-applies the configuration file to the running process.
func (rt *Runtime) Reload(ctx context.Context) error {
	if rt.reloader == nil {
		return errors.New("app: runtime built without a reload handler")
	}
	return rt.reloader.Reload(ctx)
}

// Close stops the modules in reverse order and flushes pending spans.
func (rt *Runtime) Close() {
	rt.App.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := rt.telemetry.Shutdown(ctx); err != nil {
		rt.Logger.Warn("telemetry shutdown failed", "error", err)
	}
}

// Build loads the configuration, registers the shared services, loads the
// modules the mode asks for, and wires the command pipeline. The returned
// runtime is not started.
func Build(ctx context.Context, params RunParams, mode Mode) (*Runtime, error) {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	// The level lives in a LevelVar so a config reload can adjust it on
	// the running process.
	levelVar := new(slog.LevelVar)
	levelVar.Set(cfg.Level())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelVar,
	}))

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	telCfg := telemetry.Config{
		ServiceName:    "vmman",
		ServiceVersion: params.Version,
	}
	if mode == ModeDaemon {
		telCfg.Enabled = cfg.Telemetry.Enabled
		telCfg.Endpoint = cfg.Telemetry.Endpoint
		telCfg.Insecure = cfg.Telemetry.Insecure
		telCfg.SampleRate = cfg.Telemetry.SampleRate
	}
	tel, err := telemetry.Start(ctx, telCfg, logger)
	if err != nil {
		return nil, err
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(config.ModuleConfigs(cfg))

	// Process-lifetime collaborators. Modules pick these up during
	// Provision, so they are registered before LoadModules.
	promReg := prometheus.NewRegistry()

	registry, err := capability.NewRegistry(capability.Catalog())
	if err != nil {
		return nil, fmt.Errorf("app: build capability registry: %w", err)
	}

	ttl, err := cfg.Confirmations.ParsedTTL()
	if err != nil {
		return nil, err
	}
	store := confirm.NewStore(ttl, logger)
	promReg.MustRegister(confirm.NewPendingCollector(store))

	appCtx.RegisterService("metrics.registry", promReg)
	appCtx.RegisterService("capability.registry", registry)
	appCtx.RegisterService("confirm.store", store)

	application := core.NewApp(appCtx)

	var ids []string
	switch mode {
	case ModeDaemon:
		ids = config.Resolve(cfg)
	default:
		ids = []string{cfg.Backend.ModuleID(), cfg.Oracle.ModuleID()}
	}
	if err := application.LoadModules(ids); err != nil {
		return nil, err
	}

	// Wire the pipeline between LoadModules and Start: the oracle module
	// registered its service during Provision, and the gateway resolves
	// the "pipeline" service when it starts.
	deps := pipelineDeps{
		registry: registry,
		store:    store,
		metrics:  pipeline.NewMetrics(promReg),
		logger:   logger,
	}
	inner, err := buildPipeline(appCtx, cfg, deps)
	if err != nil {
		return nil, err
	}
	cp := &commandPipeline{}
	cp.swap(inner)
	appCtx.RegisterService("pipeline", cp)

	rt := &Runtime{
		App:        application,
		AppCtx:     appCtx,
		Config:     cfg,
		ConfigPath: cfgPath,
		Logger:     logger,
		Registry:   registry,
		Pipeline:   cp,
		levelVar:   levelVar,
		telemetry:  tel,
	}

	if mode == ModeDaemon {
		handler, err := reload.NewHandler(reload.Options{
			App:        application,
			AppCtx:     appCtx,
			ConfigPath: cfgPath,
			LogLevel:   levelVar,
			Rebuild:    rebuildFunc(appCtx, cfg, deps, cp, logger),
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		// Registered before Start so the gateway's /admin/reload
		// endpoint can resolve it.
		appCtx.RegisterService("reload.handler", handler)
		rt.reloader = handler
	}

	return rt, nil
}

// pipelineDeps are the process-lifetime collaborators a pipeline build
// reuses. The metrics and the token store survive reloads, so counters
// keep counting and parked confirmations stay redeemable.
type pipelineDeps struct {
	registry *capability.Registry
	store    *confirm.Store
	metrics  *pipeline.Metrics
	logger   *slog.Logger
}

// buildPipeline assembles the stage chain for one configuration. The
// oracle comes out of the service registry, so the same module instance
// serves every build of the pipeline.
func buildPipeline(appCtx *core.AppContext, cfg *config.Config, deps pipelineDeps) (*pipeline.Pipeline, error) {
	svc, ok := appCtx.GetService("oracle.provider")
	if !ok {
		return nil, errors.New("app: oracle.provider service not available")
	}
	o, ok := svc.(oracle.Oracle)
	if !ok {
		return nil, fmt.Errorf("app: oracle.provider service has unexpected type %T", svc)
	}

	defaults := resolve.BuiltinDefaults().Merge(resolve.DefaultParams(cfg.DefaultParameters))

	return pipeline.New(pipeline.Options{
		Registry:  deps.registry,
		Generator: intent.NewGenerator(o, deps.registry, deps.logger),
		Validator: intent.NewValidator(o, deps.logger),
		Resolver: resolve.New(resolve.Options{
			Logger:       deps.logger,
			Defaults:     defaults,
			ExtraMarkers: cfg.Pipeline.PlaceholderMarkers,
			MaxAttempts:  cfg.Pipeline.MaxSolicitAttempts,
		}),
		Gate:     confirm.NewGate(deps.store, deps.logger),
		Executor: executor.New(deps.registry, deps.logger),
		Logger:   deps.logger,
		Metrics:  deps.metrics,
	})
}

// rebuildFunc returns the reload callback that reassembles the pipeline
// stages from the new configuration and swaps them in. Module selection is
// fixed at boot: changing the oracle or backend module requires a restart,
// so a changed selection is logged and otherwise ignored.
func rebuildFunc(appCtx *core.AppContext, boot *config.Config, deps pipelineDeps, cp *commandPipeline, logger *slog.Logger) reload.RebuildFunc {
	return func(ctx context.Context, next *config.Config) error {
		if want := next.Oracle.ModuleID(); want != boot.Oracle.ModuleID() {
			logger.Warn("oracle module changed in config, restart required",
				"loaded", boot.Oracle.ModuleID(), "configured", want)
		}
		if want := next.Backend.ModuleID(); want != boot.Backend.ModuleID() {
			logger.Warn("backend module changed in config, restart required",
				"loaded", boot.Backend.ModuleID(), "configured", want)
		}

		inner, err := buildPipeline(appCtx, next, deps)
		if err != nil {
			return err
		}
		cp.swap(inner)
		return nil
	}
}

// commandPipeline keeps the assembled pipeline swappable behind a stable
// service value. The gateway resolves the "pipeline" service once at
// Start; a reload rebuilds the stages and swaps them in here without
// disturbing that reference.
type commandPipeline struct {
	inner atomic.Pointer[pipeline.Pipeline]
}

func (c *commandPipeline) Handle(ctx context.Context, req envelope.Request, opts pipeline.HandleOptions) envelope.Response {
	return c.inner.Load().Handle(ctx, req, opts)
}

func (c *commandPipeline) swap(p *pipeline.Pipeline) {
	c.inner.Store(p)
}

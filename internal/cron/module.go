package cron

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// disabledSchedule turns a job off in config.
const disabledSchedule = "off"

// Config overrides the job schedules. A schedule of "off" disables the job.
type Config struct {
	ConfirmationSweep string `yaml:"confirmation_sweep"`
	UsageSnapshot     string `yaml:"usage_snapshot"`
}

// Module runs the background maintenance scheduler. It picks its
// collaborators out of the service registry, so it must be listed after
// the backend module in the config.
type Module struct {
	config    Config
	scheduler *Scheduler
	logger    *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "cron",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("cron: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner. Jobs whose collaborators are not
// registered are skipped with a warning rather than failing the boot.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	m.scheduler = NewScheduler(ctx.Logger)

	if svc, ok := ctx.GetService("metrics.registry"); ok {
		if reg, ok := svc.(prometheus.Registerer); ok {
			runs := prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "vmman",
				Subsystem: "cron",
				Name:      "job_runs_total",
				Help:      "Job executions, labeled by job name and outcome.",
			}, []string{"job", "outcome"})
			reg.MustRegister(runs)
			m.scheduler.SetMetrics(runs)
		}
	}

	if m.config.ConfirmationSweep != disabledSchedule {
		if svc, ok := ctx.GetService("confirm.store"); ok {
			sweeper, ok := svc.(TokenSweeper)
			if !ok {
				return fmt.Errorf("cron: service confirm.store does not implement TokenSweeper")
			}
			job := &ConfirmationSweepJob{
				Store:        sweeper,
				Logger:       ctx.Logger,
				ScheduleExpr: m.config.ConfirmationSweep,
			}
			if err := m.scheduler.RegisterJob(job); err != nil {
				return err
			}
		} else {
			m.logger.Warn("cron: confirm.store service missing, sweep job disabled")
		}
	}

	if m.config.UsageSnapshot != disabledSchedule {
		if svc, ok := ctx.GetService("backend.usage"); ok {
			recorder, ok := svc.(UsageRecorder)
			if !ok {
				return fmt.Errorf("cron: service backend.usage does not implement UsageRecorder")
			}
			job := &UsageSnapshotJob{
				Backend:      recorder,
				Logger:       ctx.Logger,
				ScheduleExpr: m.config.UsageSnapshot,
			}
			if err := m.scheduler.RegisterJob(job); err != nil {
				return err
			}
		} else {
			m.logger.Warn("cron: backend.usage service missing, snapshot job disabled")
		}
	}

	ctx.RegisterService("cron.scheduler", m.scheduler)
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	return m.scheduler.Stop(ctx)
}

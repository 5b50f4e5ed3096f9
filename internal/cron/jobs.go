package cron

import (
	"context"
	"fmt"
	"log/slog"
)

// TokenSweeper is the subset of the confirmation store needed by the sweep
// job. Defined here to avoid a dependency on the confirm package.
type TokenSweeper interface {
	Sweep() int
	Len() int
}

// ConfirmationSweepJob evicts confirmation tokens whose TTL has lapsed, so
// abandoned critical operations cannot accumulate unbounded pending state.
type ConfirmationSweepJob struct {
	Store        TokenSweeper
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/1 * * * *"
}

// Compile-time interface check.
var _ Job = (*ConfirmationSweepJob)(nil)

// Name implements Job.
func (j *ConfirmationSweepJob) Name() string { return "confirmation_sweep" }

// Schedule implements Job.
func (j *ConfirmationSweepJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/1 * * * *"
}

// Run evicts expired tokens.
func (j *ConfirmationSweepJob) Run(_ context.Context) error {
	removed := j.Store.Sweep()
	if removed > 0 {
		j.Logger.Info("cron: evicted expired confirmation tokens",
			"removed", removed,
			"pending", j.Store.Len(),
		)
	}
	return nil
}

// UsageRecorder is the subset of the backend needed by the snapshot job.
type UsageRecorder interface {
	SnapshotUsage(ctx context.Context) error
}

// UsageSnapshotJob records a point-in-time resource usage row, giving the
// status surface a cheap history without querying live tables.
type UsageSnapshotJob struct {
	Backend      UsageRecorder
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/10 * * * *"
}

// Compile-time interface check.
var _ Job = (*UsageSnapshotJob)(nil)

// Name implements Job.
func (j *UsageSnapshotJob) Name() string { return "usage_snapshot" }

// Schedule implements Job.
func (j *UsageSnapshotJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/10 * * * *"
}

// Run records one usage snapshot.
func (j *UsageSnapshotJob) Run(ctx context.Context) error {
	if err := j.Backend.SnapshotUsage(ctx); err != nil {
		return fmt.Errorf("cron: usage snapshot: %w", err)
	}
	j.Logger.Debug("cron: usage snapshot recorded")
	return nil
}

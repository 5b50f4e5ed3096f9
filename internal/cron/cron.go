// Package cron runs periodic background maintenance: sweeping expired
// confirmation tokens and recording usage snapshots for the status surface.
package cron

import "context"

// Job is one periodic task. The scheduler skips a tick when the
// previous run of the same job is still going.
type Job interface {
	// Name identifies the job in logs, metrics labels, and the
	// scheduler's duplicate check.
	Name() string

	// Schedule returns a 5-field cron expression (e.g. "*/5 * * * *").
	Schedule() string

	// Run executes one tick. Long jobs should watch ctx, which cancels
	// at shutdown.
	Run(ctx context.Context) error
}

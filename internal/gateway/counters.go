package gateway

import (
	"sync/atomic"
	"time"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// Counters tracks the commands served over HTTP and WebSocket, broken
// down by final envelope status. Lock-free so the hot path never blocks.
type Counters struct {
	commands       atomic.Int64
	success        atomic.Int64
	missingParams  atomic.Int64
	clarifications atomic.Int64
	confirmations  atomic.Int64
	errors         atomic.Int64
	totalLatency   atomic.Int64 // nanoseconds
}

// Record counts one handled command.
func (c *Counters) Record(status envelope.Status, elapsed time.Duration) {
	c.commands.Add(1)
	c.totalLatency.Add(int64(elapsed))

	switch status {
	case envelope.StatusSuccess:
		c.success.Add(1)
	case envelope.StatusMissingParameters:
		c.missingParams.Add(1)
	case envelope.StatusClarificationNeeded:
		c.clarifications.Add(1)
	case envelope.StatusConfirmationRequired:
		c.confirmations.Add(1)
	case envelope.StatusError:
		c.errors.Add(1)
	}
}

// Snapshot returns a consistent point-in-time view of the counters.
func (c *Counters) Snapshot() CountersSnapshot {
	commands := c.commands.Load()
	snap := CountersSnapshot{
		Commands:             commands,
		Success:              c.success.Load(),
		MissingParameters:    c.missingParams.Load(),
		ClarificationNeeded:  c.clarifications.Load(),
		ConfirmationRequired: c.confirmations.Load(),
		Errors:               c.errors.Load(),
	}
	if commands > 0 {
		snap.AvgLatencyMS = c.totalLatency.Load() / commands / int64(time.Millisecond)
	}
	return snap
}

// CountersSnapshot is a serializable point-in-time counters view.
type CountersSnapshot struct {
	Commands             int64 `json:"commands"`
	Success              int64 `json:"success"`
	MissingParameters    int64 `json:"missing_parameters"`
	ClarificationNeeded  int64 `json:"clarification_needed"`
	ConfirmationRequired int64 `json:"confirmation_required"`
	Errors               int64 `json:"errors"`
	AvgLatencyMS         int64 `json:"avg_latency_ms"`
}

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// Metrics counts handled commands by final envelope status and tracks
// end-to-end latency. A nil *Metrics is a no-op, so wiring telemetry
// stays optional.
type Metrics struct {
	commands *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics builds the pipeline collectors and registers them when reg
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vmman",
			Subsystem: "pipeline",
			Name:      "commands_total",
			Help:      "Commands handled, labeled by final envelope status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vmman",
			Subsystem: "pipeline",
			Name:      "command_duration_seconds",
			Help:      "Wall-clock time from request receipt to envelope.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.duration)
	}
	return m
}

// ObserveCommand records one handled command.
func (m *Metrics) ObserveCommand(status envelope.Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(string(status)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

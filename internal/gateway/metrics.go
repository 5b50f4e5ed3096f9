package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// serverMetrics exports per-request Prometheus series. A nil receiver is
// a no-op so handlers may run before Start wires the registry.
type serverMetrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vmman",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "HTTP requests served, labeled by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vmman",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Wall-clock request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *serverMetrics) observe(method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

package confirm

import "github.com/prometheus/client_golang/prometheus"

// NewPendingCollector exports the number of unconsumed confirmation
// tokens as a gauge. The runtime registers it alongside the pipeline
// and gateway collectors.
func NewPendingCollector(s *Store) prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "vmman",
		Subsystem: "confirm",
		Name:      "pending_tokens",
		Help:      "Confirmation tokens awaiting a verdict.",
	}, func() float64 {
		return float64(s.Len())
	})
}

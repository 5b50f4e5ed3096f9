package gateway

import (
	"net/http"
	"time"
)

// StatusResponse is the JSON body for GET /status.
type StatusResponse struct {
	Status               string           `json:"status"`
	UptimeSeconds        int64            `json:"uptime_seconds"`
	Oracle               string           `json:"oracle,omitempty"`
	OperationsBound      int              `json:"operations_bound"`
	PendingConfirmations int              `json:"pending_confirmations"`
	Commands             CountersSnapshot `json:"commands"`
}

// handleStatus is GET /status: a runtime summary for operators.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Status:        "ok",
			UptimeSeconds: int64(time.Since(g.startedAt).Seconds()),
			Commands:      g.counters.Snapshot(),
		}
		if g.oracle != nil {
			resp.Oracle = g.oracle.Name()
		}
		if g.registry != nil {
			resp.OperationsBound = len(g.registry.Bound())
		}
		if g.store != nil {
			resp.PendingConfirmations = g.store.Len()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

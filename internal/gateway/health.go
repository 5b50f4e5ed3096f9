package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
)

// readyProbeTimeout caps the oracle round trip on /readyz.
const readyProbeTimeout = 5 * time.Second

// HealthResponse is the JSON body for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealthz is the liveness probe: the process is up and serving.
func (g *Gateway) handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// ReadyResponse is the JSON body for GET /readyz. Checks holds one line
// per dependency: "ok" or the reason it is not ready.
type ReadyResponse struct {
	Status string            `json:"status"` // "ready" or "unready"
	Checks map[string]string `json:"checks"`
}

// handleReadyz reports whether the gateway can usefully take commands:
// the backend has bound every operation and the oracle answers a probe.
func (g *Gateway) handleReadyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, 2)}

		switch {
		case g.registry == nil:
			resp.Status = "unready"
			resp.Checks["backend"] = "capability registry not registered"
		case len(g.registry.Bound()) < g.registry.Len():
			resp.Status = "unready"
			resp.Checks["backend"] = fmt.Sprintf("%d of %d operations bound", len(g.registry.Bound()), g.registry.Len())
		default:
			resp.Checks["backend"] = "ok"
		}

		switch hc := g.oracle.(type) {
		case nil:
			resp.Status = "unready"
			resp.Checks["oracle"] = "provider not registered"
		case oracle.HealthChecker:
			probeCtx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
			err := hc.HealthCheck(probeCtx)
			cancel()
			if err != nil {
				resp.Status = "unready"
				resp.Checks["oracle"] = err.Error()
			} else {
				resp.Checks["oracle"] = "ok"
			}
		default:
			resp.Checks["oracle"] = "ok"
		}

		code := http.StatusOK
		if resp.Status != "ready" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	}
}

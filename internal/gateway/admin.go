package gateway

import "net/http"

// ReloadResponse is the JSON body for POST /admin/reload.
type ReloadResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// handleReload is POST /admin/reload: re-reads the config file and swaps
// the rebuilt collaborators in place. The runtime registers the handler;
// without one the endpoint reports 503.
func (g *Gateway) handleReload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.reloader == nil {
			writeJSON(w, http.StatusServiceUnavailable, ReloadResponse{
				Status: "unavailable",
				Error:  "no reload handler registered",
			})
			return
		}

		if err := g.reloader.Reload(r.Context()); err != nil {
			g.logger.Error("config reload failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, ReloadResponse{
				Status: "failed",
				Error:  err.Error(),
			})
			return
		}

		g.logger.Info("config reloaded")
		writeJSON(w, http.StatusOK, ReloadResponse{Status: "reloaded"})
	}
}

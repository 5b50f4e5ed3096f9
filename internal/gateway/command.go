package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// handleCommand is POST /api/command: one envelope round trip. Every
// well-formed request gets HTTP 200 and the envelope status is the
// discriminator; 400 is reserved for bodies that do not decode.
func (g *Gateway) handleCommand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.pipe == nil {
			writeJSON(w, http.StatusServiceUnavailable, envelope.Error("pipeline unavailable"))
			return
		}

		var req envelope.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, envelope.Errorf("decode request: %v", err))
			return
		}

		start := time.Now()
		resp := g.pipe.Handle(r.Context(), req, pipeline.HandleOptions{})
		g.counters.Record(resp.Status, time.Since(start))
		writeJSON(w, http.StatusOK, resp)
	}
}

// operationJSON is one row of the capability table.
type operationJSON struct {
	Name     string      `json:"name"`
	Doc      string      `json:"doc,omitempty"`
	Critical bool        `json:"critical,omitempty"`
	Params   []paramJSON `json:"params"`
}

type paramJSON struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
	Doc      string `json:"doc,omitempty"`
}

// handleOperations is GET /api/operations: the operation table rendered
// for UIs and remote clients.
func (g *Gateway) handleOperations() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.registry == nil {
			writeJSON(w, http.StatusServiceUnavailable, envelope.Error("capability registry unavailable"))
			return
		}

		ops := g.registry.Operations()
		out := make([]operationJSON, 0, len(ops))
		for _, op := range ops {
			row := operationJSON{
				Name:     op.Name,
				Doc:      op.Doc,
				Critical: op.Critical,
				Params:   make([]paramJSON, 0, len(op.Params)),
			}
			for _, p := range op.Params {
				row.Params = append(row.Params, paramJSON{
					Name:     p.Name,
					Type:     string(p.Type),
					Required: p.Required,
					Default:  p.Default,
					Doc:      p.Doc,
				})
			}
			out = append(out, row)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

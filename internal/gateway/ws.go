package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// handleWS is GET /ws: the command contract over a WebSocket. Each text
// frame carries one request and each reply frame one envelope. Frames
// are read sequentially, so a connection has at most one command in
// flight.
func (g *Gateway) handleWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.pipe == nil {
			http.Error(w, "pipeline unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Warn("websocket accept failed", "error", err)
			return
		}
		conn.SetReadLimit(g.config.MaxBodyBytes)

		ctx := g.baseCtx
		if ctx == nil {
			ctx = r.Context()
		}

		g.logger.Debug("websocket client connected", "remote", r.RemoteAddr)
		g.wsLoop(ctx, conn)
		_ = conn.Close(websocket.StatusNormalClosure, "")
		g.logger.Debug("websocket client disconnected", "remote", r.RemoteAddr)
	}
}

// wsLoop serves one connection until the client disconnects or the
// gateway shuts down. An undecodable frame earns an error envelope
// rather than a close, so a client typo does not cost the session.
func (g *Gateway) wsLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var resp envelope.Response
		var req envelope.Request
		if err := json.Unmarshal(data, &req); err != nil {
			resp = envelope.Errorf("decode request: %v", err)
		} else {
			start := time.Now()
			resp = g.pipe.Handle(ctx, req, pipeline.HandleOptions{})
			g.counters.Record(resp.Status, time.Since(start))
		}

		out, err := json.Marshal(resp)
		if err != nil {
			g.logger.Error("websocket: marshal envelope failed", "error", err)
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, out); err != nil {
			return
		}
	}
}

package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter assembles the endpoint tree. Liveness, readiness and the
// metrics scrape target stay outside the auth group so probes and
// collectors never need credentials.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(g.instrument)

	r.Get("/healthz", g.handleHealthz())
	r.Get("/readyz", g.handleReadyz())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(g.promReg, promhttp.HandlerOpts{}))

	r.Group(func(pr chi.Router) {
		pr.Use(g.authMiddleware)

		pr.Route("/api", func(api chi.Router) {
			api.With(middleware.RequestSize(g.config.MaxBodyBytes)).Post("/command", g.handleCommand())
			api.Get("/operations", g.handleOperations())
		})
		pr.Get("/ws", g.handleWS())
		pr.Get("/status", g.handleStatus())
		pr.Post("/admin/reload", g.handleReload())
	})

	return r
}

// instrument wraps every request with latency logging and the Prometheus
// request series.
func (g *Gateway) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		code := ww.Status()
		if code == 0 {
			// Hijacked connections (WebSocket) never write through the
			// wrapper.
			code = http.StatusSwitchingProtocols
		}
		g.metrics.observe(r.Method, code, elapsed)
		g.logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", code,
			"bytes", ww.BytesWritten(),
			"elapsed", elapsed,
		)
	})
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

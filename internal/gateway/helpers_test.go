package gateway

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/core"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/oracle"
	"github.com/akshit7093/VM-manager-AgenticAi/internal/pipeline"
	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// stubPipeline returns a canned envelope for every request and records
// what it was asked.
type stubPipeline struct {
	mu   sync.Mutex
	resp envelope.Response
	got  []envelope.Request
}

func (s *stubPipeline) Handle(_ context.Context, req envelope.Request, _ pipeline.HandleOptions) envelope.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, req)
	return s.resp
}

func (s *stubPipeline) requests() []envelope.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]envelope.Request, len(s.got))
	copy(out, s.got)
	return out
}

// fakeOracle satisfies oracle.Oracle and oracle.HealthChecker.
type fakeOracle struct {
	name      string
	healthErr error
}

func (o *fakeOracle) Complete(context.Context, oracle.Request) (*oracle.Reply, error) {
	return &oracle.Reply{Text: "{}"}, nil
}

func (o *fakeOracle) Name() string { return o.name }

func (o *fakeOracle) HealthCheck(context.Context) error { return o.healthErr }

// boundRegistry builds a small registry with every operation bound.
func boundRegistry(t *testing.T) *capability.Registry {
	t.Helper()

	reg, err := capability.NewRegistry([]capability.Operation{
		{
			Name: "list_servers",
			Doc:  "List all servers.",
		},
		{
			Name:     "delete_server",
			Doc:      "Delete a server.",
			Critical: true,
			Params: []capability.ParamSpec{
				{Name: "id_or_name", Type: capability.TypeString, Required: true, Doc: "Server ID or name."},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	for _, name := range reg.Names() {
		if err := reg.Bind(name, func(context.Context, map[string]any) (any, error) {
			return map[string]any{"ok": true}, nil
		}); err != nil {
			t.Fatalf("Bind %s: %v", name, err)
		}
	}
	return reg
}

// freeAddr returns a free TCP address on localhost.
func freeAddr(t *testing.T) string {
	t.Helper()
	var lc net.ListenConfig
	ln, err := lc.Listen(t.Context(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		t.Fatal(err)
	}
	return addr
}

// newTestGateway builds an unstarted gateway bound to a free port.
// Tests register services on the returned AppContext before starting.
func newTestGateway(t *testing.T, auth AuthConfig) (*Gateway, string) {
	t.Helper()

	addr := freeAddr(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := core.NewAppContext(logger, t.TempDir())

	g := &Gateway{}
	g.config = Config{
		Bind:            addr,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 2 * time.Second,
		MaxBodyBytes:    defaultMaxBodyBytes,
		Auth:            auth,
	}
	g.appCtx = appCtx
	g.logger = logger
	g.counters = &Counters{}
	return g, addr
}

// startGateway starts g and arranges a clean stop.
func startGateway(t *testing.T, g *Gateway) {
	t.Helper()
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		if err := g.Stop(context.Background()); err != nil {
			t.Errorf("Stop: %v", err)
		}
	})
}

// doGet makes a GET request with context.
func doGet(t *testing.T, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// doGetWithBearer makes a GET request with a bearer token.
func doGetWithBearer(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// doPost makes a POST request with a JSON body.
func doPost(t *testing.T, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

func TestNewClient_AddressForms(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		endpoint string
		ws       string
	}{
		{
			name:     "bare host and port",
			addr:     "127.0.0.1:9090",
			endpoint: "http://127.0.0.1:9090/api/command",
			ws:       "ws://127.0.0.1:9090/ws",
		},
		{
			name:     "http url",
			addr:     "http://gateway.internal:8080",
			endpoint: "http://gateway.internal:8080/api/command",
			ws:       "ws://gateway.internal:8080/ws",
		},
		{
			name:     "https url",
			addr:     "https://gateway.example.com",
			endpoint: "https://gateway.example.com/api/command",
			ws:       "wss://gateway.example.com/ws",
		},
		{
			name:     "url with path prefix",
			addr:     "https://edge.example.com/vmman",
			endpoint: "https://edge.example.com/vmman/api/command",
			ws:       "wss://edge.example.com/vmman/ws",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := newClient(tc.addr, "")
			if err != nil {
				t.Fatalf("newClient(%q): %v", tc.addr, err)
			}
			if got := c.endpoint("/api/command"); got != tc.endpoint {
				t.Errorf("endpoint = %q, want %q", got, tc.endpoint)
			}
			if got := c.wsURL(); got != tc.ws {
				t.Errorf("wsURL = %q, want %q", got, tc.ws)
			}
		})
	}
}

func TestNewClient_Invalid(t *testing.T) {
	for _, addr := range []string{"", "http://[::1"} {
		if _, err := newClient(addr, ""); err == nil {
			t.Errorf("newClient(%q) should fail", addr)
		}
	}
}

func TestClient_CommandHeaders(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(envelope.Success("ok", 3))
	}))
	t.Cleanup(srv.Close)

	c, err := newClient(srv.URL, "secret")
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	env, err := c.command(t.Context(), envelope.Request{Text: "list servers"})
	if err != nil {
		t.Fatalf("command: %v", err)
	}

	if env.Status != envelope.StatusSuccess {
		t.Errorf("status = %q, want success", env.Status)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/command" {
		t.Errorf("request was %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c, err := newClient(srv.URL, "")
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	_, err = c.command(t.Context(), envelope.Request{Text: "list servers"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "unauthorized") {
		t.Errorf("error = %v, want status and body", err)
	}
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","operations_bound":8}`))
	}))
	t.Cleanup(srv.Close)

	c, err := newClient(srv.URL, "")
	if err != nil {
		t.Fatalf("newClient: %v", err)
	}
	out, err := c.getJSON(t.Context(), "/status")
	if err != nil {
		t.Fatalf("getJSON: %v", err)
	}

	body, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want object", out)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
}

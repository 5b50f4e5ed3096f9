package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

// requestLog records the envelope requests a stub gateway received.
type requestLog struct {
	mu   sync.Mutex
	reqs []envelope.Request
}

func (l *requestLog) add(req envelope.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, req)
}

func (l *requestLog) all() []envelope.Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]envelope.Request(nil), l.reqs...)
}

// newGatewayStub stands up the HTTP surface of a gateway: the command
// endpoint answering with resp, plus status, operations and reload.
// A non-empty token puts every route behind bearer auth.
func newGatewayStub(t *testing.T, token string, resp envelope.Response) (*httptest.Server, *requestLog) {
	t.Helper()

	log := &requestLog{}
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/command", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req envelope.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.add(req)
		writeJSON(w, resp)
	}))
	mux.HandleFunc("/status", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"status": "ok", "uptime_seconds": 42})
	}))
	mux.HandleFunc("/api/operations", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, []map[string]any{{"name": "list_servers", "params": []any{}}})
	}))
	mux.HandleFunc("/admin/reload", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{"status": "reloaded"})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, log
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := rootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestCommand_EndToEnd(t *testing.T) {
	srv, log := newGatewayStub(t, "", envelope.Success(map[string]any{"count": 2}, 15))

	out, err := execute(t, "command", "list servers", "--addr", srv.URL)
	if err != nil {
		t.Fatalf("command: %v", err)
	}
	if !strings.Contains(out, `"status": "success"`) {
		t.Errorf("output missing success status:\n%s", out)
	}

	got := log.all()
	if len(got) != 1 || got[0].Text != "list servers" {
		t.Errorf("gateway saw %+v", got)
	}
}

func TestCommand_JoinsArgs(t *testing.T) {
	srv, log := newGatewayStub(t, "", envelope.Success("ok", 1))

	if _, err := execute(t, "command", "list", "servers", "--addr", srv.URL); err != nil {
		t.Fatalf("command: %v", err)
	}

	got := log.all()
	if len(got) != 1 || got[0].Text != "list servers" {
		t.Errorf("gateway saw %+v", got)
	}
}

func TestConfirm_SendsResume(t *testing.T) {
	srv, log := newGatewayStub(t, "", envelope.Success("deleted", 8))

	out, err := execute(t, "confirm", "tok-123", "--addr", srv.URL)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(out, `"status": "success"`) {
		t.Errorf("output missing success status:\n%s", out)
	}

	got := log.all()
	if len(got) != 1 {
		t.Fatalf("gateway saw %d requests, want 1", len(got))
	}
	resume := got[0].Resume
	if resume == nil || resume.Token != "tok-123" || !resume.Confirmed {
		t.Errorf("resume = %+v, want confirmed tok-123", resume)
	}
}

func TestCancel_SendsResume(t *testing.T) {
	srv, log := newGatewayStub(t, "", envelope.Clarification("cancelled"))

	if _, err := execute(t, "cancel", "tok-456", "--addr", srv.URL); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got := log.all()
	if len(got) != 1 {
		t.Fatalf("gateway saw %d requests, want 1", len(got))
	}
	resume := got[0].Resume
	if resume == nil || resume.Token != "tok-456" || resume.Confirmed {
		t.Errorf("resume = %+v, want cancelled tok-456", resume)
	}
}

func TestCommand_BearerToken(t *testing.T) {
	srv, _ := newGatewayStub(t, "secret", envelope.Success("ok", 1))

	if _, err := execute(t, "command", "list servers", "--addr", srv.URL, "--token", ""); err == nil {
		t.Fatal("expected 401 without token")
	} else if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want 401", err)
	}

	out, err := execute(t, "command", "list servers", "--addr", srv.URL, "--token", "secret")
	if err != nil {
		t.Fatalf("command with token: %v", err)
	}
	if !strings.Contains(out, `"status": "success"`) {
		t.Errorf("output missing success status:\n%s", out)
	}
}

func TestStatus(t *testing.T) {
	srv, _ := newGatewayStub(t, "", envelope.Success("ok", 1))

	out, err := execute(t, "status", "--addr", srv.URL)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, `"status": "ok"`) || !strings.Contains(out, "uptime_seconds") {
		t.Errorf("unexpected status output:\n%s", out)
	}
}

func TestOperations(t *testing.T) {
	srv, _ := newGatewayStub(t, "", envelope.Success("ok", 1))

	out, err := execute(t, "operations", "--addr", srv.URL)
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if !strings.Contains(out, "list_servers") {
		t.Errorf("unexpected operations output:\n%s", out)
	}
}

func TestReload(t *testing.T) {
	srv, _ := newGatewayStub(t, "", envelope.Success("ok", 1))

	out, err := execute(t, "reload", "--addr", srv.URL)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !strings.Contains(out, "reloaded") {
		t.Errorf("unexpected reload output:\n%s", out)
	}
}

func TestCommand_UnreachableGateway(t *testing.T) {
	// A closed port fails the round trip immediately.
	if _, err := execute(t, "command", "list servers", "--addr", "127.0.0.1:1"); err == nil {
		t.Fatal("expected transport error")
	}
}

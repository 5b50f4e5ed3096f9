package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGateway_AuthRequired(t *testing.T) {
	t.Parallel()

	g, addr := newTestGateway(t, AuthConfig{Tokens: []string{"alpha", "beta"}})
	startGateway(t, g)

	resp := doGet(t, "http://"+addr+"/status")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	resp = doGetWithBearer(t, "http://"+addr+"/status", "wrong")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	// Any token from the list is accepted.
	for _, token := range []string{"alpha", "beta"} {
		resp = doGetWithBearer(t, "http://"+addr+"/status", token)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("token %q: status = %d, want %d", token, resp.StatusCode, http.StatusOK)
		}
	}
}

func TestGateway_AuthExemptEndpoints(t *testing.T) {
	t.Parallel()

	g, addr := newTestGateway(t, AuthConfig{Tokens: []string{"secret"}})
	g.appCtx.RegisterService("capability.registry", boundRegistry(t))
	g.appCtx.RegisterService("oracle.provider", &fakeOracle{name: "fake"})
	startGateway(t, g)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp := doGet(t, "http://"+addr+path)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s without token: status = %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
	}
}

func TestGateway_AuthDisabled(t *testing.T) {
	t.Parallel()

	g, addr := newTestGateway(t, AuthConfig{})
	startGateway(t, g)

	resp := doGet(t, "http://"+addr+"/status")
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := bearerToken(r); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akshit7093/VM-manager-AgenticAi/pkg/envelope"
)

func TestAskRequest(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		confirmTok string
		cancelTok  string
		wantErr    bool
		wantText   string
		wantResume *envelope.Resume
	}{
		{
			name:     "plain text",
			args:     []string{"list servers"},
			wantText: "list servers",
		},
		{
			name:       "confirm token",
			confirmTok: "tok-1",
			wantResume: &envelope.Resume{Token: "tok-1", Confirmed: true},
		},
		{
			name:       "cancel token",
			cancelTok:  "tok-2",
			wantResume: &envelope.Resume{Token: "tok-2", Confirmed: false},
		},
		{
			name:       "both flags rejected",
			confirmTok: "a",
			cancelTok:  "b",
			wantErr:    true,
		},
		{
			name:    "no input rejected",
			wantErr: true,
		},
		{
			name:    "blank text rejected",
			args:    []string{"   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := askRequest(tt.args, tt.confirmTok, tt.cancelTok)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Text != tt.wantText {
				t.Errorf("text = %q, want %q", req.Text, tt.wantText)
			}
			if tt.wantResume == nil {
				if req.Resume != nil {
					t.Errorf("unexpected resume %+v", req.Resume)
				}
				return
			}
			if req.Resume == nil || *req.Resume != *tt.wantResume {
				t.Errorf("resume = %+v, want %+v", req.Resume, tt.wantResume)
			}
		})
	}
}

func TestPrintEnvelope(t *testing.T) {
	var buf bytes.Buffer
	resp := envelope.Errorf("operation cancelled")
	if err := printEnvelope(&buf, resp); err != nil {
		t.Fatalf("printEnvelope: %v", err)
	}

	var decoded envelope.Response
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded.Status != envelope.StatusError {
		t.Errorf("status = %q, want error", decoded.Status)
	}
	if decoded.Message != "operation cancelled" {
		t.Errorf("message = %q", decoded.Message)
	}
}

// writeTestConfig points the oracle at a closed local port so inference
// fails fast and the deterministic fallback answers.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vmman.yaml")
	cfg := `version: "1"
log_level: error
oracle:
  provider: gemini
  config:
    api_key: AIza-test
    base_url: http://127.0.0.1:1/v1beta
    timeout: 2s
`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
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

func TestAsk_EndToEnd(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t,
		"ask", "list servers",
		"--config", cfgPath,
		"--data-dir", t.TempDir(),
	)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}

	if !strings.Contains(out, `"status": "success"`) {
		t.Errorf("output missing success status:\n%s", out)
	}
}

func TestAsk_UnknownToken(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t,
		"ask", "--confirm", "no-such-token",
		"--config", cfgPath,
		"--data-dir", t.TempDir(),
	)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out, `"status": "error"`) {
		t.Errorf("output missing error status:\n%s", out)
	}
}

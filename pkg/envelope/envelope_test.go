package envelope

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestResponse_StatusDiscriminator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp Response
		want Status
	}{
		{"success", Success(map[string]any{"id": "srv-1"}, 42), StatusSuccess},
		{"missing", MissingParameters("create_volume", nil, []MissingParam{{Name: "size_gb", Type: "integer", Required: true}}), StatusMissingParameters},
		{"clarify", Clarification("could not match an operation"), StatusClarificationNeeded},
		{"confirm", ConfirmationRequired("tok-1", "delete_server", "delete_server(id_or_name=web-01)"), StatusConfirmationRequired},
		{"error", Error("boom"), StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.resp.Status != tt.want {
				t.Fatalf("Status = %q, want %q", tt.resp.Status, tt.want)
			}
			raw, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var decoded struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(raw, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if decoded.Status != string(tt.want) {
				t.Errorf("serialized status = %q, want %q", decoded.Status, tt.want)
			}
		})
	}
}

func TestResponse_IrrelevantFieldsOmitted(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Clarification("rephrase please"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	for _, field := range []string{"result", "elapsed_ms", "function_name", "missing", "confirmation_token"} {
		if strings.Contains(s, field) {
			t.Errorf("clarification response should omit %q, got %s", field, s)
		}
	}
}

func TestRequest_IsResume(t *testing.T) {
	t.Parallel()

	if (Request{Text: "list servers"}).IsResume() {
		t.Error("plain text request should not be a resume")
	}
	if (Request{Resume: &Resume{}}).IsResume() {
		t.Error("resume with empty token should not count")
	}
	if !(Request{Resume: &Resume{Token: "t", Confirmed: true}}).IsResume() {
		t.Error("resume with token should count")
	}
}

func TestRequest_ResumeRoundTrip(t *testing.T) {
	t.Parallel()

	in := `{"text":"","resume":{"token":"abc","confirmed":true}}`
	var req Request
	if err := json.Unmarshal([]byte(in), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !req.IsResume() || !req.Resume.Confirmed || req.Resume.Token != "abc" {
		t.Fatalf("unexpected decode: %+v", req)
	}
}

func TestErrorf(t *testing.T) {
	t.Parallel()

	resp := Errorf("operation %s failed after %d attempts", "resize_server", 2)
	if resp.Status != StatusError {
		t.Fatalf("Status = %q, want error", resp.Status)
	}
	if resp.Message != "operation resize_server failed after 2 attempts" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

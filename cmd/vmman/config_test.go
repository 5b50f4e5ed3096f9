package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestConfigInit_WritesStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vmman.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output does not name the file: %s", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `version: "1"`) {
		t.Error("starter config missing version field")
	}

	// The uncommented template lines must parse.
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("starter config is not valid YAML: %v", err)
	}
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vmman.yaml")
	if err := os.WriteFile(path, []byte("existing"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := execute(t, "config", "init", "--config", path); err == nil {
		t.Fatal("expected error without --force")
	}

	if _, err := execute(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) == "existing" {
		t.Error("--force did not overwrite")
	}
}

func TestConfigCheck(t *testing.T) {
	path := writeTestConfig(t)

	out, err := execute(t, "config", "check", path)
	if err != nil {
		t.Fatalf("config check: %v", err)
	}
	if !strings.Contains(out, "Configuration OK (3 modules)") {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "backend.sqlitecloud") || !strings.Contains(out, "oracle.gemini") {
		t.Errorf("load order missing modules: %s", out)
	}
}

func TestConfigCheck_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(`version: "7"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := execute(t, "config", "check", path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestConfigShow_RedactsSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vmman.yaml")
	cfg := `version: "1"
oracle:
  provider: gemini
  config:
    api_key: AIza-very-secret
gateway:
  bind: 127.0.0.1:8080
  auth:
    tokens:
      - super-secret-token
`
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}

	if strings.Contains(out, "AIza-very-secret") {
		t.Error("api_key leaked into output")
	}
	if strings.Contains(out, "super-secret-token") {
		t.Error("gateway token leaked into output")
	}
	if !strings.Contains(out, "[redacted]") {
		t.Errorf("no redaction marker in output:\n%s", out)
	}
	if !strings.Contains(out, "127.0.0.1:8080") {
		t.Error("non-secret values should stay readable")
	}
}

func TestSecretKey(t *testing.T) {
	for key, want := range map[string]bool{
		"api_key":  true,
		"tokens":   true,
		"password": true,
		"secret":   true,
		"bind":     false,
		"model":    false,
		"timeout":  false,
	} {
		if got := secretKey(key); got != want {
			t.Errorf("secretKey(%q) = %v, want %v", key, got, want)
		}
	}
}

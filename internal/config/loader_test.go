package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "sk-test-123")

	path := writeConfig(t, `
version: "1"
log_level: debug
oracle:
  provider: gemini
  config:
    api_key: ${TEST_GEMINI_KEY}
    model: gemma-3-27b-it
backend:
  config:
    fail_auth: false
pipeline:
  max_solicit_attempts: 5
  placeholder_markers: ["<tbd>"]
confirmations:
  ttl: 15m
default_parameters:
  create_server:
    network_name: private-net
gateway:
  listen: 127.0.0.1:8080
cron:
  usage_snapshot: "*/30 * * * *"
telemetry:
  enabled: true
  endpoint: localhost:4318
  sample_rate: 0.25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Version != "1" || cfg.LogLevel != "debug" {
		t.Errorf("top level = %q/%q, want 1/debug", cfg.Version, cfg.LogLevel)
	}
	if cfg.Oracle.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.Oracle.Provider)
	}

	// The oracle subtree should carry the expanded key.
	var oracleCfg struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	}
	if err := cfg.Oracle.Config.Decode(&oracleCfg); err != nil {
		t.Fatalf("decode oracle subtree: %v", err)
	}
	if oracleCfg.APIKey != "sk-test-123" {
		t.Errorf("api_key = %q, want expanded env value", oracleCfg.APIKey)
	}

	if cfg.Pipeline.MaxSolicitAttempts != 5 {
		t.Errorf("max_solicit_attempts = %d, want 5", cfg.Pipeline.MaxSolicitAttempts)
	}
	ttl, err := cfg.Confirmations.ParsedTTL()
	if err != nil || ttl != 15*time.Minute {
		t.Errorf("ttl = %v (%v), want 15m", ttl, err)
	}
	if cfg.DefaultParameters["create_server"]["network_name"] != "private-net" {
		t.Errorf("default parameters missing: %+v", cfg.DefaultParameters)
	}
	if cfg.Gateway.IsZero() {
		t.Error("gateway subtree dropped")
	}
	if cfg.Cron.IsZero() {
		t.Error("cron subtree dropped")
	}
	if !cfg.Telemetry.Enabled || cfg.Telemetry.SampleRate != 0.25 {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
}

func TestLoad_EnvDefault(t *testing.T) {
	path := writeConfig(t, `
version: "1"
log_level: ${VMMAN_UNSET_LEVEL:-warn}
oracle:
  provider: gemini
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log_level = %q, want default warn", cfg.LogLevel)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
version: "1"
oracle:
  provider: gemini
  config:
    api_key: ${VMMAN_DEFINITELY_UNSET}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "VMMAN_DEFINITELY_UNSET") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestLoad_UnknownTopLevelKey(t *testing.T) {
	path := writeConfig(t, `
version: "1"
oracel:
  provider: gemini
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for misspelled top-level key")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for empty file")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("error should mention empty: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveLoadOrder(t *testing.T) {
	cfg := &Config{
		Oracle:  OracleSection{Provider: "gemini"},
		Backend: BackendSection{},
	}

	got := Resolve(cfg)
	want := []string{"backend.sqlitecloud", "oracle.gemini", "cron"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// The gateway joins the load order only when the config carries a
// gateway section.
func TestResolveIncludesGatewayWhenConfigured(t *testing.T) {
	path := writeConfig(t, `
version: "1"
oracle:
  provider: gemini
gateway:
  bind: "127.0.0.1:9999"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got := Resolve(cfg)
	if len(got) != 4 || got[3] != "gateway" {
		t.Errorf("order = %v, want gateway last", got)
	}

	nodes := ModuleConfigs(cfg)
	if _, ok := nodes["gateway"]; !ok {
		t.Error("gateway subtree missing from module configs")
	}
}

func TestModuleConfigs(t *testing.T) {
	path := writeConfig(t, `
version: "1"
oracle:
  provider: openai
  config:
    model: gpt-4o-mini
backend:
  config:
    seed: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	nodes := ModuleConfigs(cfg)
	if _, ok := nodes["oracle.openai"]; !ok {
		t.Error("oracle subtree missing from module configs")
	}
	if _, ok := nodes["backend.sqlitecloud"]; !ok {
		t.Error("backend subtree missing from module configs")
	}
	if _, ok := nodes["cron"]; ok {
		t.Error("absent cron section should not produce an entry")
	}
}

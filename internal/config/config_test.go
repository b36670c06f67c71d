package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netsage.yaml")

	content := `
listen:
  port: 9090
model:
  name: llama3.1
  provider: ollama
  ollama_url: http://ollama.lab:11434
retrieval:
  enabled: true
  top_k: 3
lab:
  live: true
  username: netops
  password: ${NETSAGE_TEST_PASSWORD}
  devices:
    - name: R1
      host: 10.255.255.11
      platform: cisco_xe
    - name: Alpine-1
      host: 10.255.255.110
      platform: linux
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NETSAGE_TEST_PASSWORD", "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Listen.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Listen.Port)
	}
	if cfg.Model.Name != "llama3.1" {
		t.Errorf("model = %q, want llama3.1", cfg.Model.Name)
	}
	if cfg.Lab.Password != "hunter2" {
		t.Errorf("env expansion failed, password = %q", cfg.Lab.Password)
	}
	if len(cfg.Lab.Devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(cfg.Lab.Devices))
	}
	if cfg.Lab.Devices[1].Platform != "linux" {
		t.Errorf("platform = %q, want linux", cfg.Lab.Devices[1].Platform)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("top_k = %d, want 3", cfg.Retrieval.TopK)
	}
}

func TestLoad_ModelSamplingOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "netsage.yaml")

	content := `
model:
  name: qwen2.5
  temperature: 0
  num_predict: 512
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model.Temperature == nil || *cfg.Model.Temperature != 0 {
		t.Errorf("temperature = %v, want explicit 0", cfg.Model.Temperature)
	}
	if cfg.Model.NumPredict != 512 {
		t.Errorf("num_predict = %d, want 512", cfg.Model.NumPredict)
	}

	// Omitted temperature stays unset, not zero.
	if cfg := Default(); cfg.Model.Temperature != nil {
		t.Errorf("default temperature should be unset, got %v", *cfg.Model.Temperature)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Listen.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Listen.Port)
	}
	if cfg.Model.Provider != "ollama" {
		t.Errorf("default provider = %q, want ollama", cfg.Model.Provider)
	}
	if cfg.Retrieval.TopK != 2 {
		t.Errorf("default top_k = %d, want 2", cfg.Retrieval.TopK)
	}
}

func TestFindConfig_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != path {
		t.Errorf("found %q, want %q", found, path)
	}
}

func TestFindConfig_ExplicitMissing(t *testing.T) {
	if _, err := FindConfig("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for explicit missing path")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"trace", LevelTrace, false},
		{"debug", slog.LevelDebug, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

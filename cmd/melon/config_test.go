package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file is empty config", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg != (Config{}) {
			t.Fatalf("expected zero config, got %+v", cfg)
		}
	})

	t.Run("parses fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := []byte(`viewer_path: /opt/melon/viewer
artifact_path: /tmp/out.pdf
timeout: 90s
poll_interval: 500ms
keep_temp: true
log_level: debug
server_address: 0.0.0.0:9000
`)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg.ViewerPath != "/opt/melon/viewer" || cfg.ArtifactPath != "/tmp/out.pdf" {
			t.Fatalf("paths: %+v", cfg)
		}
		if cfg.Timeout != 90*time.Second || cfg.PollInterval != 500*time.Millisecond {
			t.Fatalf("durations: %s %s", cfg.Timeout, cfg.PollInterval)
		}
		if cfg.KeepTemp == nil || !*cfg.KeepTemp {
			t.Fatalf("keep_temp not parsed")
		}
		if cfg.LogLevel != "debug" || cfg.ServerAddress != "0.0.0.0:9000" {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("timeout: [not a duration"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatal("expected error for malformed config")
		}
	})
}

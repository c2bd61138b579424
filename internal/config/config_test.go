package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("BRAINSTORM_DATA_ROOT", "/tmp/brainstorm-data")
	t.Setenv("BRAINSTORM_CLIENT_ID", "explicit-client")
	t.Setenv("BRAINSTORM_MAX_PAYLOAD_SIZE", "1048576")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load must succeed without a config file: %v", err)
	}
	if cfg.DataRoot != "/tmp/brainstorm-data" {
		t.Errorf("DataRoot = %q", cfg.DataRoot)
	}
	if cfg.ClientID != "explicit-client" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if cfg.MaxPayloadSize != 1048576 {
		t.Errorf("MaxPayloadSize = %d, want 1048576", cfg.MaxPayloadSize)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want default", cfg.PollInterval)
	}
}

func TestLoad_DefaultDataRoot(t *testing.T) {
	t.Setenv("BRAINSTORM_DATA_ROOT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".brainstorm")
	if cfg.DataRoot != want {
		t.Errorf("DataRoot = %q, want %q", cfg.DataRoot, want)
	}
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := []byte(`
max_payload_size = 2048
poll_interval = "3s"
default_wait_timeout = "10s"
max_wait_timeout = "60s"
lock_timeout = "1s"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxPayloadSize != 2048 {
		t.Errorf("MaxPayloadSize = %d", cfg.MaxPayloadSize)
	}
	if cfg.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.MaxTimeout != 60*time.Second {
		t.Errorf("MaxTimeout = %v", cfg.MaxTimeout)
	}
}

func TestLoad_EnvOverridesSurviveMissingFile(t *testing.T) {
	t.Setenv("BRAINSTORM_MAX_PAYLOAD_SIZE", "999")
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxPayloadSize != 999 {
		t.Errorf("MaxPayloadSize = %d, want 999", cfg.MaxPayloadSize)
	}
}

// Package config loads Brainstorm's runtime configuration from environment
// variables (the authoritative source, per spec §6) with an optional
// ~/.config/brainstorm/config.toml overlay for operator tuning of
// ambient knobs that are not part of the on-disk schema or authorization
// rules: poll interval, default/maximum wait timeout, lock timeout, and
// payload caps.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultInlineContentLimit = 50 * 1024  // 50 KB, resource content cap
	DefaultMessagePayloadCap  = 500 * 1024 // 500 KB, overridable by BRAINSTORM_MAX_PAYLOAD_SIZE
	DefaultResourceFileCap    = 500 * 1024 // 500 KB, referenced-payload cap

	DefaultPollInterval = 2 * time.Second
	DefaultWaitTimeout  = 300 * time.Second
	MaxWaitTimeout      = 3600 * time.Second
	DefaultLockTimeout  = 5 * time.Second
)

// Config is Brainstorm's fully resolved runtime configuration.
type Config struct {
	DataRoot       string        // env-only: BRAINSTORM_DATA_ROOT
	ClientID       string        // env-only: BRAINSTORM_CLIENT_ID
	MaxPayloadSize int64         `toml:"max_payload_size"`
	PollInterval   time.Duration `toml:"poll_interval"`
	DefaultTimeout time.Duration `toml:"default_wait_timeout"`
	MaxTimeout     time.Duration `toml:"max_wait_timeout"`
	LockTimeout    time.Duration `toml:"lock_timeout"`
}

// fileOverlay is the subset of Config an operator may override via
// config.toml; duration fields are Go duration strings ("2s").
type fileOverlay struct {
	MaxPayloadSize int64  `toml:"max_payload_size"`
	PollInterval   string `toml:"poll_interval"`
	DefaultTimeout string `toml:"default_wait_timeout"`
	MaxTimeout     string `toml:"max_wait_timeout"`
	LockTimeout    string `toml:"lock_timeout"`
}

// Load resolves Config from the environment, then applies an optional
// config.toml overlay if present at path (pass "" for the default
// location, ~/.config/brainstorm/config.toml). A missing file is not an
// error: the server must run on env vars alone.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DataRoot:       resolveDataRoot(),
		ClientID:       os.Getenv("BRAINSTORM_CLIENT_ID"),
		MaxPayloadSize: DefaultMessagePayloadCap,
		PollInterval:   DefaultPollInterval,
		DefaultTimeout: DefaultWaitTimeout,
		MaxTimeout:     MaxWaitTimeout,
		LockTimeout:    DefaultLockTimeout,
	}

	if raw := os.Getenv("BRAINSTORM_MAX_PAYLOAD_SIZE"); raw != "" {
		if n, err := parseSize(raw); err == nil {
			cfg.MaxPayloadSize = n
		}
	}

	if path == "" {
		path = DefaultConfigPath()
	}
	if err := applyFileOverlay(cfg, path); err != nil {
		return nil, err
	}

	return cfg, nil
}

func resolveDataRoot() string {
	if root := os.Getenv("BRAINSTORM_DATA_ROOT"); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".brainstorm")
}

// DefaultConfigPath returns the default config.toml location, exported so
// the fsnotify watcher (watch.go) and the CLI can reference the same path
// Load falls back to.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "brainstorm", "config.toml")
}

func applyFileOverlay(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil // optional overlay, silently absent
	}

	var overlay fileOverlay
	if _, err := toml.DecodeFile(path, &overlay); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if overlay.MaxPayloadSize > 0 {
		cfg.MaxPayloadSize = overlay.MaxPayloadSize
	}
	if d, err := time.ParseDuration(overlay.PollInterval); err == nil && d > 0 {
		cfg.PollInterval = d
	}
	if d, err := time.ParseDuration(overlay.DefaultTimeout); err == nil && d > 0 {
		cfg.DefaultTimeout = d
	}
	if d, err := time.ParseDuration(overlay.MaxTimeout); err == nil && d > 0 {
		cfg.MaxTimeout = d
	}
	if d, err := time.ParseDuration(overlay.LockTimeout); err == nil && d > 0 {
		cfg.LockTimeout = d
	}
	return nil
}

func parseSize(raw string) (int64, error) {
	var n int64
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid size %q", raw)
	}
	return n, nil
}

package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch watches path (the config.toml overlay, typically DefaultConfigPath())
// for changes and invokes onChange with the freshly reloaded Config whenever
// it is written. This governs only the ambient knobs in Config (poll
// interval, timeouts, payload caps) — it never touches the on-disk schema
// or authorization rules, which have no hot-reload path. Returns
// immediately; the watch loop runs until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "config.watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("config hot-reload disabled: fsnotify unavailable", "error", err)
		return err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		logger.Debug("config directory not present, hot-reload inactive", "dir", dir)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					logger.Warn("config reload failed, keeping previous configuration", "error", err)
					continue
				}
				logger.Info("configuration reloaded",
					"poll_interval", cfg.PollInterval,
					"max_payload_size", cfg.MaxPayloadSize,
				)
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}

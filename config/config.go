// Package config loads Atlas configuration from an optional YAML file with
// ATLAS_ environment variable overrides, and applies the pipeline activation
// surface to a registry.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hupe1980/atlas/logging"
	"github.com/hupe1980/atlas/pipeline"
)

// Config is the root configuration structure.
type Config struct {
	Pipelines PipelinesConfig `koanf:"pipelines"`
}

// PipelinesConfig controls pipeline activation at startup.
type PipelinesConfig struct {
	// Enabled toggles the whole pipeline mechanism. When false every
	// defined pipeline is deactivated, making all hook runs pass-throughs.
	Enabled bool `koanf:"enabled"`

	// Disabled lists individual pipelines to deactivate while the
	// mechanism as a whole stays on.
	Disabled []string `koanf:"disabled"`
}

// Default returns the baseline configuration: pipelines enabled, none
// disabled.
func Default() *Config {
	return &Config{Pipelines: PipelinesConfig{Enabled: true}}
}

// Load reads configuration from the YAML file at path (skipped if path is
// empty or the file does not exist) and overlays ATLAS_ environment
// variables, e.g. ATLAS_PIPELINES_ENABLED=false.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config from %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("ATLAS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "ATLAS_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}

	// Default values
	if !k.Exists("pipelines.enabled") {
		k.Set("pipelines.enabled", true)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Apply pushes the activation surface onto a registry: a global disable
// deactivates every defined pipeline, otherwise only the listed ones.
// Pipelines must already be defined when Apply runs.
func (c *Config) Apply(reg *pipeline.Registry) error {
	if !c.Pipelines.Enabled {
		for name := range reg.Definitions() {
			if err := reg.SetActive(name, false); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range c.Pipelines.Disabled {
		if err := reg.SetActive(name, false); err != nil {
			return err
		}
	}
	return nil
}

// Watch watches the config file for changes and calls onChange with the
// freshly loaded configuration whenever it is modified. It blocks until ctx
// is cancelled or the watcher fails.
func Watch(ctx context.Context, path string, logger logging.Logger, onChange func(*Config)) error {
	if path == "" {
		return fmt.Errorf("config path cannot be empty")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	logger.Info("watching config file for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("config watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				logger.Warn("config reload failed", "path", path, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", path)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watch error", "error", err)
		}
	}
}

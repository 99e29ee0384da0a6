// Package cli implements the nonplanar command-line interface.
//
// This package provides commands for rewriting sliced G-code with non-planar
// infill modulation, inspecting files without touching them, serving the
// transform over HTTP and managing the result cache. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - process: Rewrite a G-code file in place (or to --output)
//   - info: Report layers, solid heights and modulation scaling
//   - serve: Expose the transform as an HTTP endpoint
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rdv0011/NonPlanarInfill/pkg/cache"
	"github.com/rdv0011/NonPlanarInfill/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "nonplanar"

// cacheDir returns the cache directory using XDG standard (~/.cache/nonplanar/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the config file path (~/.config/nonplanar/config.toml),
// honoring XDG_CONFIG_HOME.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// buildCache builds the cache backend selected by the config. Only the
// Redis backend can fail to construct; callers should fall back to a null
// cache with a warning — caching is an optimization, never a requirement.
func buildCache(ctx context.Context, cfg *Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// runnerFor assembles a pipeline runner for a command invocation.
func runnerFor(ctx context.Context, cfg *Config, noCache bool) *pipeline.Runner {
	logger := loggerFromContext(ctx)
	c, err := buildCache(ctx, cfg, noCache)
	if err != nil {
		logger.Warnf("Cache disabled: %v", err)
		c = cache.NewNullCache()
	}
	return pipeline.NewRunner(c, logger)
}

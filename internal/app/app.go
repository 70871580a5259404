// Package app initializes and holds long-lived application services, acting
// as a dependency injection container for the CLI commands.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/malbox/malbox/internal/config"
	"github.com/malbox/malbox/internal/logging"
	"github.com/malbox/malbox/internal/metrics"
	"github.com/malbox/malbox/internal/ratelimit"
)

// App holds the shared, long-lived services for the application: the loaded
// configuration, the logger, and the rate limit store (when enabled). It is
// initialized once at startup and passed to the commands that need it.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	limiter *ratelimit.Store
}

// GetConfig returns the validated run configuration.
func (a *App) GetConfig() config.Config {
	return a.cfg
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetLimiter returns the publish interval guard, or nil when disabled.
func (a *App) GetLimiter() *ratelimit.Store {
	return a.limiter
}

// New loads configuration and initializes services. It fails fast if any
// critical service cannot be initialized.
func New(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	var limiter *ratelimit.Store
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.Open(cfg.RateLimit.Path, cfg.RateLimit.MinInterval, logger)
		if err != nil {
			return nil, fmt.Errorf("init rate limit store: %w", err)
		}
	}

	logger.Debug("application services initialized",
		zap.String("username", cfg.MAL.Username),
		zap.String("content_type", cfg.MAL.ContentType),
		zap.String("status", cfg.MAL.Status),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)

	return &App{cfg: cfg, logger: logger, limiter: limiter}, nil
}

// Close gracefully shuts down the services held by the App container.
func (a *App) Close() {
	if a.limiter != nil {
		if err := a.limiter.Close(); err != nil {
			a.logger.Warn("error closing rate limit store", zap.Error(err))
		}
	}
	// Flush buffered log entries; best effort on shutdown.
	_ = a.logger.Sync()
}

// Package setup performs process initialization shared by every entrypoint:
// configuration loading and logging.
package setup

import (
	"log"

	"go.uber.org/zap"

	"github.com/guildwarden/guildwarden/internal/setup/config"
)

// App bundles the initialized application dependencies.
type App struct {
	Config *config.Config
	Logger *zap.Logger
}

// Initialize loads configuration and sets up logging.
func Initialize() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Debug.LogDir, cfg.Debug.LogLevel, cfg.Debug.MaxLogsToKeep)
	if err != nil {
		return nil, err
	}

	return &App{
		Config: cfg,
		Logger: logger,
	}, nil
}

// Cleanup flushes buffered log entries.
func (a *App) Cleanup() {
	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
}

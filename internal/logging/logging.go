// Package logging builds the zap logger used across the game.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/samdwyer/echoes/internal/config"
)

// New returns a logger for the given settings. Development mode writes
// human-readable console lines; otherwise records are JSON. When Path is set
// the log goes to that file instead of stderr, which keeps the terminal free
// for the UI.
func New(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.Path != "" {
		zc.OutputPaths = []string{cfg.Path}
		zc.ErrorOutputPaths = []string{cfg.Path}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

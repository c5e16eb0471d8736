// Package logging builds the zap logger used across gxcopy.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level       string   // debug, info, warn, error
	Format      string   // json, console
	OutputPaths []string // stdout, stderr, or file paths
}

// LevelFor maps the --verbose/--debug switches onto a level name.
// Without either switch only errors are logged.
func LevelFor(verbose, debug bool, fallback string) string {
	switch {
	case debug:
		return "debug"
	case verbose:
		return "info"
	case fallback != "":
		return fallback
	default:
		return "error"
	}
}

// New builds a logger from cfg. Unknown levels fall back to error.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.ErrorLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = zapcore.ErrorLevel
		}
	}

	var config zap.Config
	if cfg.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.DisableStacktrace = true
	}

	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	if len(cfg.OutputPaths) > 0 {
		config.OutputPaths = cfg.OutputPaths
	}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

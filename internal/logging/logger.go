package logging

import (
	"fmt"

	"github.com/mikey/callsheet-pipeline/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDaemonLogger builds the long-running process logger from the
// logging.* config section. JSON is the deployment default; anything
// else gets the colored console encoder for running in a terminal.
func NewDaemonLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.GetString("logging.level"))
	if err != nil {
		level = zapcore.InfoLevel
	}
	return build(cfg.GetString("logging.format") == "json", level)
}

// NewCLILogger builds the one-shot analyzer logger. Human-readable
// unless JSON is requested, so diagnostics stay out of the report's way.
func NewCLILogger(verbose, jsonFormat bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return build(jsonFormat, level)
}

func build(json bool, level zapcore.Level) (*zap.Logger, error) {
	var c zap.Config
	if json {
		c = zap.NewProductionConfig()
		c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		c = zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	c.Level = zap.NewAtomicLevelAt(level)

	logger, err := c.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

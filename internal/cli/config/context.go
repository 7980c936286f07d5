package config

import (
	"context"
	"log/slog"
)

// configKey stores the loaded config in the command context.
type configKey struct{}

// loggerKey stores the logger in the command context.
type loggerKey struct{}

// WithConfig returns a context carrying the config.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithLogger returns a context carrying the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the config from the command context, falling back to
// defaults when none was stored.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{Design: DefaultDesignFile, Output: DefaultOutput}
}

// LoggerFromContext retrieves the logger from the command context, falling
// back to a discard logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	loggerKey contextKey = iota
	refreshIDKey
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithRefreshID tags the context logger with the id of a refresh run.
func WithRefreshID(ctx context.Context, refreshID string) context.Context {
	ctx = context.WithValue(ctx, refreshIDKey, refreshID)
	return WithField(ctx, "refresh_id", refreshID)
}

// RefreshID extracts the refresh run id from context.
func RefreshID(ctx context.Context) string {
	if id, ok := ctx.Value(refreshIDKey).(string); ok {
		return id
	}
	return ""
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	logCtx := FromContext(ctx).With()
	switch v := value.(type) {
	case string:
		logCtx = logCtx.Str(key, v)
	case int:
		logCtx = logCtx.Int(key, v)
	case uint32:
		logCtx = logCtx.Uint32(key, v)
	case bool:
		logCtx = logCtx.Bool(key, v)
	case error:
		logCtx = logCtx.AnErr(key, v)
	default:
		logCtx = logCtx.Interface(key, v)
	}
	logger := logCtx.Logger()
	return WithLogger(ctx, &logger)
}

// WithCharacter adds character context to the logger.
func WithCharacter(ctx context.Context, characterID string) context.Context {
	return WithField(ctx, "character_id", characterID)
}

// WithPass adds the reconciliation pass name to the logger.
func WithPass(ctx context.Context, pass string) context.Context {
	return WithField(ctx, "pass", pass)
}

// WithOperation adds operation context to the logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

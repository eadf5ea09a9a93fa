package types

import (
	"context"
	"log/slog"
)

// Context Keys
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
	sourceKey    contextKey = "event_source"
)

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves the logger stored by WithLogger. It falls back
// to slog.Default() so callers never need a nil check.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// WithEventSource stores the chat user ID that produced the inbound event.
func WithEventSource(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, sourceKey, userID)
}

// GetEventSource returns the chat user ID of the inbound event, if any.
func GetEventSource(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sourceKey).(string)
	return id, ok && id != ""
}

// Package context carries request-scoped values (request ID, logger) across
// the delivery and usecase layers without leaking echo into the domain.
package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey keys request-scoped values. A dedicated type keeps these keys
// from colliding with other packages' context values.
type ContextKey string

const (
	// KeyRequestID holds the request's correlation ID.
	KeyRequestID ContextKey = "request_id"

	// KeyLogger holds the logger pre-tagged with the request ID.
	KeyLogger ContextKey = "logger"

	// HeaderXRequestID is the header the correlation ID travels in, both
	// inbound (client-supplied) and outbound (echoed back).
	HeaderXRequestID = "X-Request-Id"
)

// GetRequestID returns the request ID stored on the echo context, minting a
// fresh UUID when none was set.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}

	return uuid.New().String()
}

// SetRequestID stores the request ID on the echo context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// GetRequestIDFromContext returns the request ID carried by a plain
// context.Context, or "" when absent.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)

	return id
}

// WithRequestID attaches the request ID to a plain context.Context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// GetLoggerOrDefault returns the request-scoped logger when one was attached,
// otherwise the given fallback. Service code calls this so log lines keep
// their request ID without the services holding echo types.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// WithLogger attaches a request-scoped logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}

// Package context carries request-scoped values from the HTTP layer to the use cases.
package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type loggerKey struct{}

const (
	// HeaderXRequestID is read from the request and echoed on the response.
	HeaderXRequestID = echo.HeaderXRequestID

	requestIDKey = "request_id"
)

// GetRequestID returns the id assigned to the request.
// A request that skipped the request id middleware is given one here, so later reads agree.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(requestIDKey).(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	SetRequestID(c, id)

	return id
}

// SetRequestID stores the request id in echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(requestIDKey, requestID)
}

// WithLogger returns a context carrying the request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the request-scoped logger, or fallback outside a request.
func Logger(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// AddLogAttrs extends the request-scoped logger so every later log line of the
// request carries args. It does nothing when the request has no logger.
func AddLogAttrs(c echo.Context, args ...any) {
	ctx := c.Request().Context()
	logger := Logger(ctx, nil)
	if logger == nil {
		return
	}

	c.SetRequest(c.Request().WithContext(WithLogger(ctx, logger.With(args...))))
}

package middleware

import (
	"log/slog"
	"time"

	"pushrelay/config"
	deliverycontext "pushrelay/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// LoggerMiddleware logs every request when debug is on, and only failed requests otherwise
type LoggerMiddleware struct {
	logger *slog.Logger
	debug  bool
}

// NewLoggerMiddleware creates a new logger middleware
func NewLoggerMiddleware(logger *slog.Logger, config *config.Config) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger: logger,
		debug:  config.Env.Debug,
	}
}

// Handle processes request logging
func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// Render through the error handler now so the logged status is final
			c.Error(err)
		}

		if m.debug || c.Response().Status >= 500 {
			m.logRequest(c, start)
		}

		return nil
	}
}

// logRequest logs request details
func (m *LoggerMiddleware) logRequest(c echo.Context, start time.Time) {
	req := c.Request()
	res := c.Response()

	// Calculate latency
	latency := time.Since(start)

	// Prepare log fields
	fields := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("uri", req.URL.Path),
		slog.Int("status", res.Status),
		slog.Duration("latency", latency),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", req.UserAgent()),
		slog.Int64("bytes_out", res.Size),
	}

	// If there are query parameters, log them too
	if len(req.URL.RawQuery) > 0 {
		fields = append(fields, slog.String("query", req.URL.RawQuery))
	}

	// Choose log level based on status code
	logLevel := slog.LevelInfo
	if res.Status >= 400 {
		logLevel = slog.LevelWarn
	}
	if res.Status >= 500 {
		logLevel = slog.LevelError
	}

	// The request logger already carries request_id, plus subscription_id on bearer routes
	logger := deliverycontext.Logger(req.Context(), m.logger.With(slog.String("request_id", deliverycontext.GetRequestID(c))))
	logger.LogAttrs(req.Context(), logLevel, "HTTP Request", fields...)
}

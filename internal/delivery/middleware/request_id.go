package middleware

import (
	"log/slog"

	deliverycontext "pushrelay/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Client ids longer than this are replaced rather than echoed.
const maxRequestIDLength = 128

// RequestIDMiddleware gives every request an id, echoes it on the response and
// attaches a logger carrying it to the request context.
type RequestIDMiddleware struct {
	logger *slog.Logger
}

// NewRequestIDMiddleware creates a new Request ID middleware
func NewRequestIDMiddleware(logger *slog.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{
		logger: logger,
	}
}

// Process keeps a well-formed client id and generates one otherwise.
func (m *RequestIDMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(deliverycontext.HeaderXRequestID)
		if !isValidRequestID(requestID) {
			requestID = uuid.NewString()
		}

		deliverycontext.SetRequestID(c, requestID)
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

		logger := m.logger.With(slog.String("request_id", requestID))
		c.SetRequest(c.Request().WithContext(deliverycontext.WithLogger(c.Request().Context(), logger)))

		return next(c)
	}
}

// isValidRequestID accepts ids that are safe to log and echo verbatim.
func isValidRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		switch ch := id[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.', ch == ':':
		default:
			return false
		}
	}

	return true
}

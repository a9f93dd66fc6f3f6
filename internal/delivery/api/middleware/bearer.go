package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "pushrelay/internal/delivery/context"
	domainerrors "pushrelay/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

const (
	bearerPrefix = "Bearer "
	tokenKey     = "bearer_token"
)

// BearerToken extracts "Authorization: Bearer <token>" and rejects requests without one.
// The token is a subscription id; resolving it is left to the use case so that an
// unknown token is reported before the body is looked at.
func BearerToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return domainerrors.ErrUnauthorized
		}

		token := strings.TrimSpace(header[len(bearerPrefix):])
		if token == "" {
			return domainerrors.ErrUnauthorized
		}

		c.Set(tokenKey, token)
		deliverycontext.AddLogAttrs(c, slog.String("subscription_id", token))

		return next(c)
	}
}

// GetToken returns the token stored by BearerToken
func GetToken(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)

	return token
}

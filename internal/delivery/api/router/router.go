// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"pushrelay/config"
	"pushrelay/internal/delivery/api/middleware"
	"pushrelay/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

type RouterParams struct {
	fx.In

	RelayHandler *handler.RelayHandler
	Config       *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	relayHandler *handler.RelayHandler
	config       *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		relayHandler: params.RelayHandler,
		config:       params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Sending is the only write a holder of a token can repeat at will
	sendMiddleware := []echo.MiddlewareFunc{middleware.BearerToken}
	if limiter := r.sendRateLimiter(); limiter != nil {
		sendMiddleware = append([]echo.MiddlewareFunc{limiter}, sendMiddleware...)
	}
	e.POST("/", r.relayHandler.Send, sendMiddleware...)

	apiGroup := e.Group("/api")
	{
		apiGroup.POST("/subscribe", r.relayHandler.Subscribe)
		apiGroup.POST("/unsubscribe", r.relayHandler.Unsubscribe)
		apiGroup.GET("/vapid-public-key", r.relayHandler.PublicKey)
		apiGroup.GET("/messages", r.relayHandler.FetchPending, middleware.BearerToken)
		apiGroup.GET("/qrcode", r.relayHandler.PairingQRCode, middleware.BearerToken)
	}
}

func (r *router) sendRateLimiter() echo.MiddlewareFunc {
	cfg := r.config.HTTP.SendRateLimit
	if cfg == nil || cfg.RequestsPerSecond <= 0 {
		return nil
	}

	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RequestsPerSecond),
		Burst:     cfg.Burst,
		ExpiresIn: cfg.ExpiresIn,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(_ echo.Context, _ string, _ error) error {
			return echo.ErrTooManyRequests
		},
	})
}

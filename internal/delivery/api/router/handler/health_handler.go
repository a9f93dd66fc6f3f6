package handler

import (
	"pushrelay/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness
func HealthCheck(c echo.Context) error {
	return response.OK(c)
}

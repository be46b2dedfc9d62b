package handler

import (
	"net/http"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/dto"
	"github.com/labstack/echo/v4"
)

func RegisterHealthRoutes(e *echo.Echo) {
	e.GET("/health", Health)
	e.GET("/api/health-check/", Health)
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok", Message: "API is healthy"})
}

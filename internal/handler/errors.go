package handler

import (
	"errors"
	"net/http"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/service"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps service errors to HTTP errors. Unknown errors pass through
// to the global error handler as 500s.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOverlapConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrListingInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to perform this action")
	case errors.Is(err, service.ErrGatewayUnavailable):
		return echo.NewHTTPError(http.StatusInternalServerError, service.ErrGatewayUnavailable.Error())
	}
	return err
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

package middleware

import (
	"net/http"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/policy"
	"github.com/labstack/echo/v4"
)

// WriteGuard lets safe methods through and requires an authenticated actor
// for everything else. Ownership checks stay in the services.
func WriteGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if policy.CanRead(c.Request().Method) {
				return next(c)
			}
			if ActorFrom(c).IsAnonymous() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
			}
			return next(c)
		}
	}
}

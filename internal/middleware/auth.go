package middleware

import (
	"net/http"
	"strings"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/policy"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorKey = "actor"

// Claims is the bearer token payload. Sub is the user id.
type Claims struct {
	Email       string `json:"email"`
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	PhoneNumber string `json:"phone_number"`
	jwt.RegisteredClaims
}

// JWTAuth resolves the caller from an HS256 bearer token. Requests without an
// Authorization header continue as anonymous; a malformed or invalid token is
// rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" {
				c.Set(actorKey, policy.Anonymous)
				return next(c)
			}
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims := &Claims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid || claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(actorKey, policy.Actor{
				ID:        claims.Subject,
				Email:     claims.Email,
				FirstName: claims.GivenName,
				LastName:  claims.FamilyName,
				Phone:     claims.PhoneNumber,
			})
			return next(c)
		}
	}
}

// ActorFrom returns the actor resolved by JWTAuth, or Anonymous.
func ActorFrom(c echo.Context) policy.Actor {
	if a, ok := c.Get(actorKey).(policy.Actor); ok {
		return a
	}
	return policy.Anonymous
}

// WithActor stores actor on c. Used by tests and internal callers.
func WithActor(c echo.Context, actor policy.Actor) {
	c.Set(actorKey, actor)
}

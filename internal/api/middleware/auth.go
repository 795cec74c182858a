package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/altdap/identity-service/internal/api/handler"
	"github.com/altdap/identity-service/internal/core/ports"
)

// Auth resolves the bearer token to a live identity and injects it into the
// request context. The identity's role comes from storage, not from the
// token, so a role change takes effect on the next request.
func Auth(authorizer ports.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			ident, err := authorizer.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(handler.IdentityKey, ident)
			return next(c)
		}
	}
}

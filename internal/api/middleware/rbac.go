package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/altdap/identity-service/internal/api/handler"
	"github.com/altdap/identity-service/internal/core/domain"
	"github.com/altdap/identity-service/internal/core/ports"
)

// RBAC gates a route on exact role membership. It must run after Auth; a
// request that never passed Auth fails as unauthenticated, not forbidden.
func RBAC(authorizer ports.Authorizer, allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, _ := c.Get(handler.IdentityKey).(*domain.Identity)
			if err := authorizer.RequireRole(ident, allowed...); err != nil {
				return err
			}
			return next(c)
		}
	}
}

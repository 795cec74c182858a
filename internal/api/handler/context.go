package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/altdap/identity-service/internal/core/domain"
)

// IdentityKey is the echo context key under which the Auth middleware stores
// the resolved *domain.Identity.
const IdentityKey = "identity"

// ctxIdentity extracts the identity injected by the Auth middleware. A
// missing identity means the route was wired without the middleware, which
// is a deployment bug; it still surfaces to the caller as unauthenticated.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	ident, _ := c.Get(IdentityKey).(*domain.Identity)
	if ident == nil {
		return nil, domain.ErrUnauthenticated
	}
	return ident, nil
}

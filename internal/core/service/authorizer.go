package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/altdap/identity-service/internal/core/domain"
	"github.com/altdap/identity-service/internal/core/ports"
)

// Authorizer resolves "who is this caller and what may they do" for every
// other module.
type Authorizer struct {
	issuer *TokenIssuer
	users  ports.UserRepository
}

func NewAuthorizer(issuer *TokenIssuer, users ports.UserRepository) *Authorizer {
	return &Authorizer{issuer: issuer, users: users}
}

// Authenticate verifies the access token, then reloads the live user row so
// a deleted account is rejected even while its signature is still valid. The
// role comes from storage, not the token, so role changes take effect at the
// next request rather than the next token.
func (a *Authorizer) Authenticate(ctx context.Context, bearerToken string) (*domain.Identity, error) {
	claims, err := a.issuer.VerifyAccessToken(bearerToken)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := a.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return &domain.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}

// RequireRole checks exact membership in the allowed set.
func (a *Authorizer) RequireRole(identity *domain.Identity, roles ...domain.Role) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	for _, r := range roles {
		if identity.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/altdap/identity-service/internal/core/domain"
)

// AccessClaims is the payload carried by every access token.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints signed access tokens and computes refresh expiries.
// Access-token lifetime and the expiry claim are derived from the same TTL,
// so the two can never silently diverge.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer fails when no signing secret is configured. That failure is
// fatal at startup; it is never surfaced per-request.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt signing secret: %w", domain.ErrConfigurationMissing)
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// SignAccessToken produces an HS256 token embedding subject id, role, email
// and an expiry computed from the configured access TTL.
func (t *TokenIssuer) SignAccessToken(user *domain.User) (string, error) {
	now := t.now().UTC()
	claims := AccessClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken parses and validates a token, mapping library errors
// onto the domain taxonomy: expired, tampered, or otherwise malformed.
func (t *TokenIssuer) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenSignatureMismatch
		default:
			return nil, domain.ErrTokenInvalid
		}
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// RefreshExpiry is the absolute expiry of a refresh token issued now.
func (t *TokenIssuer) RefreshExpiry() time.Time {
	return t.now().UTC().Add(t.refreshTTL)
}

// AccessTokenLifetimeSeconds is the expiresIn value reported to clients.
func (t *TokenIssuer) AccessTokenLifetimeSeconds() int {
	return int(t.accessTTL / time.Second)
}

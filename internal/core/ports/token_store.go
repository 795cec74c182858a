package ports

import (
	"context"
	"time"
)

// Purposes namespace single-use tokens in the TokenStore.
const (
	PurposePasswordReset = "pwreset"
	PurposeEmailVerify   = "verify"
)

// TokenStore holds single-use opaque-token fingerprints (password reset,
// email verification) with a TTL. Consume must be atomic: a token can be
// redeemed exactly once.
type TokenStore interface {
	Save(ctx context.Context, purpose, tokenHash, userID string, ttl time.Duration) error

	// Consume removes the token and returns the user id it was issued for.
	// A miss (unknown, expired, or already redeemed) returns
	// domain.ErrTokenInvalid.
	Consume(ctx context.Context, purpose, tokenHash string) (string, error)
}

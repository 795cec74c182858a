package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/altdap/identity-service/internal/core/domain"
)

// TokenStore keeps single-use token fingerprints (password reset, email
// verification) with a TTL. Key format: authtoken:<purpose>:<fingerprint>,
// value: owning user id. Redis expiry handles the TTL; GETDEL makes
// redemption atomic.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Save stores the fingerprint of a freshly issued token.
func (s *TokenStore) Save(ctx context.Context, purpose, tokenHash, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(purpose, tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("token store save: %w", err)
	}
	return nil
}

// Consume redeems a token exactly once: GETDEL removes the key in the same
// command that reads it, so a concurrent second redemption misses.
func (s *TokenStore) Consume(ctx context.Context, purpose, tokenHash string) (string, error) {
	userID, err := s.client.GetDel(ctx, s.key(purpose, tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrTokenInvalid
		}
		return "", fmt.Errorf("token store consume: %w", err)
	}
	return userID, nil
}

func (s *TokenStore) key(purpose, tokenHash string) string {
	return fmt.Sprintf("authtoken:%s:%s", purpose, tokenHash)
}

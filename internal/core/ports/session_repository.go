package ports

import (
	"context"
	"time"

	"github.com/altdap/identity-service/internal/core/domain"
)

// SessionRepository is the session ledger: one row per outstanding refresh
// token, keyed by the token's fingerprint. The raw token never reaches this
// interface.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)

	// Consume atomically removes and returns the session matching tokenHash
	// with expiry after now. Of two concurrent calls with the same hash, at
	// most one succeeds; the other gets domain.ErrSessionNotFound. This is
	// the single-use guarantee behind refresh rotation.
	Consume(ctx context.Context, tokenHash string, now time.Time) (*domain.Session, error)

	// Delete removes the session with the given fingerprint if present.
	// Deleting a nonexistent session is not an error.
	Delete(ctx context.Context, tokenHash string) error

	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)

	// DeleteByUser removes every session owned by userID and returns the
	// number of rows removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

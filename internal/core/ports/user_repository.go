package ports

import (
	"context"

	"github.com/altdap/identity-service/internal/core/domain"
)

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	PasswordHash          *string
	EmailVerified         *bool
	GuardianEmail         *string
	GuardianConsentStatus *domain.ConsentStatus
}

// UserRepository is the credential-store collaborator contract. The core
// defines it; storage implements it. Email uniqueness is the storage layer's
// responsibility and surfaces as domain.ErrDuplicateEmail.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, update UserUpdate) error

	// UpsertGuardianConsent creates or replaces the consent record keyed by
	// user id, making approval idempotent.
	UpsertGuardianConsent(ctx context.Context, consent *domain.GuardianConsent) (*domain.GuardianConsent, error)
}

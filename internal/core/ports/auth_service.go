package ports

import (
	"context"

	"github.com/altdap/identity-service/internal/core/domain"
)

// SessionMetadata is advisory client context recorded on the session row.
// It is informational only, never security-enforced.
type SessionMetadata struct {
	UserAgent string
	IPAddress string
}

// SignupInput carries all data needed to open an account.
type SignupInput struct {
	Email         string
	Password      string
	Role          domain.Role
	FirstName     string
	LastName      string
	GuardianEmail string
}

// GuardianConsentInput records a guardian's approval of a Teen account.
type GuardianConsentInput struct {
	TeenUserID    string
	GuardianName  string
	GuardianEmail string
	ApprovalCode  string
}

// AuthResult is the {user, tokens} envelope returned by signup, login and
// refresh.
type AuthResult struct {
	User   *domain.User
	Tokens *domain.TokenBundle
}

// AuthService defines the authentication state machine.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput, md SessionMetadata) (*AuthResult, error)
	Login(ctx context.Context, email, password string, md SessionMetadata) (*AuthResult, error)

	// Refresh rotates a refresh token: the presented token is burned and a
	// brand-new bundle issued. A token that was already used, revoked or
	// expired fails with domain.ErrInvalidRefreshToken.
	Refresh(ctx context.Context, refreshToken string, md SessionMetadata) (*AuthResult, error)

	// Logout revokes the session behind refreshToken. Idempotent: revoking
	// an unknown or already-revoked token succeeds.
	Logout(ctx context.Context, refreshToken string) error

	// RequestPasswordReset always succeeds from the caller's point of view,
	// whether or not the email exists.
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error

	VerifyEmail(ctx context.Context, token string) error

	GuardianConsent(ctx context.Context, input GuardianConsentInput) (*domain.GuardianConsent, error)

	ListSessions(ctx context.Context, userID string) ([]*domain.Session, error)
	RevokeAllSessions(ctx context.Context, userID string) (int64, error)
}

// Authorizer is the capability check every other module consumes.
type Authorizer interface {
	// Authenticate verifies a bearer token and resolves the live identity
	// behind it. Any failure (bad signature, expiry, deleted user) surfaces
	// as domain.ErrUnauthenticated.
	Authenticate(ctx context.Context, bearerToken string) (*domain.Identity, error)

	// RequireRole is an exact set-membership check; there is no role
	// hierarchy. Admin gains nothing implicitly.
	RequireRole(identity *domain.Identity, roles ...domain.Role) error
}

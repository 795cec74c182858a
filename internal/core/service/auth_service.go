package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/altdap/identity-service/internal/core/domain"
	"github.com/altdap/identity-service/internal/core/ports"
	"github.com/altdap/identity-service/internal/pkg/secrets"
)

// PasswordHasher abstracts the CPU-bound bcrypt work so it can run on a
// bounded worker pool instead of the request goroutine.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Compare reports whether plaintext matches hash. The error return is
	// for infrastructure failures only, never for a mismatch.
	Compare(ctx context.Context, hash, plaintext string) (bool, error)
}

// AuthServiceParams collects the collaborators of the auth state machine.
type AuthServiceParams struct {
	Users    ports.UserRepository
	Sessions ports.SessionRepository
	Tokens   ports.TokenStore
	Issuer   *TokenIssuer
	Hasher   PasswordHasher
	Notifier ports.Notifier
	Approval ports.ApprovalVerifier

	BcryptCost     int
	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration

	Logger zerolog.Logger
}

// AuthService implements signup, login, refresh rotation, logout, the
// password-reset and email-verification flows, and guardian consent.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	tokens   ports.TokenStore
	issuer   *TokenIssuer
	hasher   PasswordHasher
	notifier ports.Notifier
	approval ports.ApprovalVerifier

	resetTTL  time.Duration
	verifyTTL time.Duration

	// dummyHash is compared against on login when the email is unknown, so
	// both failure paths burn a bcrypt verification and stay timing-aligned.
	dummyHash string

	log zerolog.Logger
	now func() time.Time
}

// NewAuthService wires the orchestrator. The dummy hash is computed once at
// startup with the same cost as real password hashes.
func NewAuthService(p AuthServiceParams) (*AuthService, error) {
	decoy, err := secrets.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	dummyHash, err := secrets.HashPassword(decoy, p.BcryptCost)
	if err != nil {
		return nil, err
	}
	if p.ResetTokenTTL <= 0 {
		p.ResetTokenTTL = time.Hour
	}
	if p.VerifyTokenTTL <= 0 {
		p.VerifyTokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     p.Users,
		sessions:  p.Sessions,
		tokens:    p.Tokens,
		issuer:    p.Issuer,
		hasher:    p.Hasher,
		notifier:  p.Notifier,
		approval:  p.Approval,
		resetTTL:  p.ResetTokenTTL,
		verifyTTL: p.VerifyTokenTTL,
		dummyHash: dummyHash,
		log:       p.Logger,
		now:       time.Now,
	}, nil
}

// Signup opens an account and implicitly logs it in. Exactly one new User
// row and one new Session row on success.
func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput, md ports.SessionMetadata) (*ports.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("signup: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	nowTS := s.now().UTC()
	user := &domain.User{
		Email:         email,
		PasswordHash:  hash,
		Role:          input.Role,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		GuardianEmail: input.GuardianEmail,
		CreatedAt:     nowTS,
		UpdatedAt:     nowTS,
	}
	if input.Role == domain.RoleTeen {
		user.GuardianConsentStatus = domain.ConsentPending
	}

	// The unique index on email closes the race the pre-check leaves open:
	// of two concurrent signups, one lands here with ErrDuplicateEmail.
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	tokens, err := s.issueTokens(ctx, created, md)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.sendEmailVerification(ctx, created)

	s.log.Info().
		Str("user_id", created.ID).
		Str("role", string(created.Role)).
		Msg("account created")

	return &ports.AuthResult{User: created, Tokens: tokens}, nil
}

// Login verifies credentials. Unknown email and wrong password return the
// identical error after comparable work.
func (s *AuthService) Login(ctx context.Context, email, password string, md ports.SessionMetadata) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Burn a bcrypt comparison anyway so the miss is not observable
			// through response timing.
			_, _ = s.hasher.Compare(ctx, s.dummyHash, password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	match, err := s.hasher.Compare(ctx, user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !match {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user, md)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("login")

	return &ports.AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh rotates a refresh token. The presented token is consumed
// atomically; of two concurrent calls with the same token at most one
// reaches issuance.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, md ports.SessionMetadata) (*ports.AuthResult, error) {
	session, err := s.sessions.Consume(ctx, secrets.Fingerprint(refreshToken), s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Account deleted since the session was minted.
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user, md)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	s.log.Debug().Str("user_id", user.ID).Str("session_id", session.ID).Msg("refresh token rotated")

	return &ports.AuthResult{User: user, Tokens: tokens}, nil
}

// Logout revokes the session behind refreshToken. Revoking an unknown or
// already-revoked token is a success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.sessions.Delete(ctx, secrets.Fingerprint(refreshToken)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RequestPasswordReset reports success whether or not the email exists, to
// prevent account enumeration. When it does exist, a single-use token is
// stored by fingerprint and handed to the notifier for delivery.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Msg("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("password reset request: %w", err)
	}

	token, err := secrets.NewOpaqueToken()
	if err != nil {
		return fmt.Errorf("password reset request: %w", err)
	}
	if err := s.tokens.Save(ctx, ports.PurposePasswordReset, secrets.Fingerprint(token), user.ID, s.resetTTL); err != nil {
		return fmt.Errorf("password reset request: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, token); err != nil {
		// Delivery is external; a failure here must not reveal that the
		// account exists.
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password reset delivery failed")
	}
	return nil
}

// ConfirmPasswordReset redeems a reset token, stores the new password hash,
// and revokes every outstanding session of the account.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.Consume(ctx, ports.PurposePasswordReset, secrets.Fingerprint(token))
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("password reset confirm: %w", err)
	}
	if err := s.users.Update(ctx, userID, ports.UserUpdate{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("password reset confirm: %w", err)
	}

	revoked, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("password reset confirm: %w", err)
	}

	s.log.Info().Str("user_id", userID).Int64("sessions_revoked", revoked).Msg("password reset")
	return nil
}

// VerifyEmail redeems a single-use verification token and marks the account
// verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.Consume(ctx, ports.PurposeEmailVerify, secrets.Fingerprint(token))
	if err != nil {
		return err
	}

	verified := true
	if err := s.users.Update(ctx, userID, ports.UserUpdate{EmailVerified: &verified}); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("email verified")
	return nil
}

// GuardianConsent records an approval. The approval code is validated by the
// external verifier; the core only persists the resulting Approved state.
// Repeated approvals refresh the signed-at timestamp, nothing else.
func (s *AuthService) GuardianConsent(ctx context.Context, input ports.GuardianConsentInput) (*domain.GuardianConsent, error) {
	if err := s.approval.Verify(ctx, input.TeenUserID, input.ApprovalCode); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, input.TeenUserID)
	if err != nil {
		return nil, fmt.Errorf("guardian consent: %w", err)
	}
	if user.Role != domain.RoleTeen {
		return nil, fmt.Errorf("guardian consent: %w", domain.ErrInvalidRole)
	}

	guardianEmail := strings.ToLower(strings.TrimSpace(input.GuardianEmail))
	consent, err := s.users.UpsertGuardianConsent(ctx, &domain.GuardianConsent{
		UserID:        user.ID,
		GuardianName:  input.GuardianName,
		GuardianEmail: guardianEmail,
		Status:        domain.ConsentApproved,
		SignedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("guardian consent: %w", err)
	}

	// Mirror the consent state onto the user row so reads stay one query.
	approved := domain.ConsentApproved
	if err := s.users.Update(ctx, user.ID, ports.UserUpdate{
		GuardianEmail:         &guardianEmail,
		GuardianConsentStatus: &approved,
	}); err != nil {
		return nil, fmt.Errorf("guardian consent: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("guardian consent approved")
	return consent, nil
}

// ListSessions returns the caller's active sessions, newest first.
func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// RevokeAllSessions logs the user out everywhere and returns how many
// sessions were revoked.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID string) (int64, error) {
	revoked, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	return revoked, nil
}

// issueTokens mints a TokenBundle and persists the matching session row.
// Only the refresh token's fingerprint is stored.
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User, md ports.SessionMetadata) (*domain.TokenBundle, error) {
	accessToken, err := s.issuer.SignAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := secrets.NewOpaqueToken()
	if err != nil {
		return nil, err
	}

	expiresAt := s.issuer.RefreshExpiry()
	if _, err := s.sessions.Create(ctx, &domain.Session{
		UserID:    user.ID,
		TokenHash: secrets.Fingerprint(refreshToken),
		UserAgent: md.UserAgent,
		IPAddress: md.IPAddress,
		ExpiresAt: expiresAt,
		CreatedAt: s.now().UTC(),
	}); err != nil {
		return nil, err
	}

	return &domain.TokenBundle{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        s.issuer.AccessTokenLifetimeSeconds(),
		RefreshExpiresAt: expiresAt,
	}, nil
}

// sendEmailVerification issues a verification token on signup. Failures are
// logged, not fatal; the account is already created.
func (s *AuthService) sendEmailVerification(ctx context.Context, user *domain.User) {
	token, err := secrets.NewOpaqueToken()
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("verification token generation failed")
		return
	}
	if err := s.tokens.Save(ctx, ports.PurposeEmailVerify, secrets.Fingerprint(token), user.ID, s.verifyTTL); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("verification token store failed")
		return
	}
	if err := s.notifier.SendEmailVerification(ctx, user.Email, token); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("verification delivery failed")
	}
}

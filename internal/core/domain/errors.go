package domain

import "errors"

// Sentinel errors for the identity core. The HTTP boundary maps these to
// status codes in one place; services wrap them with fmt.Errorf("...: %w").
var (
	// ErrDuplicateEmail is returned when a signup email is already registered
	// (case-folded). Backed by a unique index, so concurrent signups with the
	// same email produce exactly one success.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRefreshToken is returned when a refresh token is unknown,
	// expired, or already rotated.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	ErrTokenExpired           = errors.New("token expired")
	ErrTokenInvalid           = errors.New("token invalid")
	ErrTokenSignatureMismatch = errors.New("token signature mismatch")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")

	// ErrConfigurationMissing is fatal at startup, never per-request.
	ErrConfigurationMissing = errors.New("required configuration missing")

	// ErrStorageUnavailable marks retryable storage failures (timeouts,
	// broken connections). Retrying is the caller's job, not the core's.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRole     = errors.New("invalid role")
)

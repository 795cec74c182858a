package domain

import "time"

// Session is the server-side record of one outstanding refresh token.
// TokenHash holds the SHA-256 fingerprint of the raw token; the raw value is
// handed to the client once and never persisted.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Valid reports whether the session is still usable at the given instant.
// Lookups do not auto-expire rows, so callers re-check after every find.
func (s *Session) Valid(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// TokenBundle is the credential pair returned by signup, login and refresh.
// It is ephemeral: only the refresh token's fingerprint survives on the
// Session row.
type TokenBundle struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	ExpiresIn        int       `json:"expiresIn"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

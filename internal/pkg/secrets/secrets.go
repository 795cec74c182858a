// Package secrets holds the primitive operations the identity core builds on:
// password hashing, opaque token generation, token fingerprinting, and the
// duration grammar used by TTL configuration.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/altdap/identity-service/internal/core/domain"
)

const (
	// DefaultBcryptCost is the work-factor floor for stored password hashes.
	DefaultBcryptCost = 11

	// opaqueTokenBytes is the entropy of refresh/reset/verification tokens.
	opaqueTokenBytes = 48
)

// HashPassword hashes a plaintext password with bcrypt. Costs below the
// default floor are bumped up rather than honored.
func HashPassword(plaintext string, cost int) (string, error) {
	if cost < DefaultBcryptCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored bcrypt hash.
// The comparison is constant-time within bcrypt itself.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// NewOpaqueToken returns a hex-encoded token with 48 bytes of entropy,
// suitable for refresh, password-reset and email-verification credentials.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Fingerprint returns the SHA-256 digest of a token, hex-encoded. Storage
// layers persist and look up fingerprints only; the digest is never
// reversible into the raw token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ParseDuration parses TTL strings like "900s", "15m", "12h" or "7d".
// It extends the stdlib grammar with a day suffix, which the refresh TTL
// configuration needs. Invalid specs are configuration errors.
func ParseDuration(spec string) (time.Duration, error) {
	s := strings.TrimSpace(spec)
	if s == "" {
		return 0, fmt.Errorf("parse duration %q: %w", spec, domain.ErrConfigurationMissing)
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", spec, domain.ErrConfigurationMissing)
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", spec, domain.ErrConfigurationMissing)
	}
	return d, nil
}

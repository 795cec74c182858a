package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/altdap/identity-service/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user_1",
		Email: "a@x.com",
		Role:  domain.RoleTeen,
	}
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", 15*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	token, err := issuer.SignAccessToken(testUser())
	if err != nil {
		t.Fatalf("SignAccessToken returned error: %v", err)
	}

	claims, err := issuer.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken returned error: %v", err)
	}
	if claims.Subject != "user_1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != string(domain.RoleTeen) {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("unexpected email: %s", claims.Email)
	}
}

func TestTokenIssuer_MissingSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Minute, time.Hour); !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer, err := NewTokenIssuer("secret", 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}
	// Sign in the past so the token is already lapsed when verified.
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := issuer.SignAccessToken(testUser())
	if err != nil {
		t.Fatalf("SignAccessToken returned error: %v", err)
	}
	issuer.now = time.Now

	if _, err := issuer.VerifyAccessToken(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenIssuer_Tampered(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", 15*time.Minute, time.Hour)
	other, _ := NewTokenIssuer("other-secret", 15*time.Minute, time.Hour)

	token, err := other.SignAccessToken(testUser())
	if err != nil {
		t.Fatalf("SignAccessToken returned error: %v", err)
	}

	if _, err := issuer.VerifyAccessToken(token); !errors.Is(err, domain.ErrTokenSignatureMismatch) {
		t.Fatalf("expected ErrTokenSignatureMismatch, got %v", err)
	}
}

func TestTokenIssuer_Malformed(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", 15*time.Minute, time.Hour)
	for _, tok := range []string{"", "garbage", strings.Repeat("a.", 3)} {
		if _, err := issuer.VerifyAccessToken(tok); !errors.Is(err, domain.ErrTokenInvalid) {
			t.Fatalf("VerifyAccessToken(%q): expected ErrTokenInvalid, got %v", tok, err)
		}
	}
}

func TestTokenIssuer_Lifetimes(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", 15*time.Minute, 7*24*time.Hour)
	if got := issuer.AccessTokenLifetimeSeconds(); got != 900 {
		t.Fatalf("expected 900 seconds, got %d", got)
	}

	before := time.Now().UTC().Add(7 * 24 * time.Hour).Add(-time.Minute)
	after := time.Now().UTC().Add(7 * 24 * time.Hour).Add(time.Minute)
	exp := issuer.RefreshExpiry()
	if exp.Before(before) || exp.After(after) {
		t.Fatalf("refresh expiry out of range: %v", exp)
	}
}

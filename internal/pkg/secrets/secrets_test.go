package secrets

import (
	"errors"
	"testing"
	"time"

	"github.com/altdap/identity-service/internal/core/domain"
)

func TestHashPassword_NeverPlaintext(t *testing.T) {
	hash, err := HashPassword("Passw0rd!", DefaultBcryptCost)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "Passw0rd!" {
		t.Fatalf("hash equals plaintext")
	}
	if !VerifyPassword("Passw0rd!", hash) {
		t.Fatalf("VerifyPassword rejected the original password")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatalf("VerifyPassword accepted a wrong password")
	}
}

func TestHashPassword_CostFloor(t *testing.T) {
	// A cost below the floor must be bumped, not honored.
	hash, err := HashPassword("pw", 4)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !VerifyPassword("pw", hash) {
		t.Fatalf("hash does not verify")
	}
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken returned error: %v", err)
	}
	b, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken returned error: %v", err)
	}
	if len(a) != 96 { // 48 bytes hex-encoded
		t.Fatalf("expected 96 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatalf("two tokens are identical")
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	if Fingerprint("abc") != Fingerprint("abc") {
		t.Fatalf("fingerprint is not deterministic")
	}
	if Fingerprint("abc") == Fingerprint("abd") {
		t.Fatalf("distinct tokens share a fingerprint")
	}
	if len(Fingerprint("abc")) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(Fingerprint("abc")))
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		spec string
		want time.Duration
	}{
		{"900s", 900 * time.Second},
		{"15m", 15 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"1.5d", 36 * time.Hour},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.spec)
		if err != nil {
			t.Fatalf("ParseDuration(%q) returned error: %v", tc.spec, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDuration(%q) = %v, want %v", tc.spec, got, tc.want)
		}
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, spec := range []string{"", "soon", "7dd", "x5m"} {
		if _, err := ParseDuration(spec); !errors.Is(err, domain.ErrConfigurationMissing) {
			t.Fatalf("ParseDuration(%q): expected configuration error, got %v", spec, err)
		}
	}
}

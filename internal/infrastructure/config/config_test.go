package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/altdap/identity-service/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "s3cret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Fatalf("unexpected access TTL: %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 7*24*time.Hour {
		t.Fatalf("unexpected refresh TTL: %v", cfg.RefreshTTL())
	}
	if cfg.Auth.BcryptCost != 11 {
		t.Fatalf("unexpected bcrypt cost: %d", cfg.Auth.BcryptCost)
	}
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := &Config{}
	cfg.JWT.AccessTTL = "15m"
	cfg.JWT.RefreshTTL = "7d"
	cfg.Auth.ResetTokenTTL = "1h"
	cfg.Auth.VerifyTokenTTL = "24h"

	if err := cfg.Validate(); !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestValidate_BadDuration(t *testing.T) {
	cfg := &Config{}
	cfg.JWT.AccessSecret = "s3cret"
	cfg.JWT.AccessTTL = "soon"
	cfg.JWT.RefreshTTL = "7d"
	cfg.Auth.ResetTokenTTL = "1h"
	cfg.Auth.VerifyTokenTTL = "24h"

	if err := cfg.Validate(); !errors.Is(err, domain.ErrConfigurationMissing) {
		t.Fatalf("expected configuration error for bad TTL, got %v", err)
	}
}

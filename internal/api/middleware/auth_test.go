package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/altdap/identity-service/internal/api/handler"
	"github.com/altdap/identity-service/internal/core/domain"
)

// stubAuthorizer accepts exactly one bearer token.
type stubAuthorizer struct {
	accept   string
	identity *domain.Identity
}

func (s *stubAuthorizer) Authenticate(_ context.Context, token string) (*domain.Identity, error) {
	if token != s.accept {
		return nil, domain.ErrUnauthenticated
	}
	return s.identity, nil
}

func (s *stubAuthorizer) RequireRole(ident *domain.Identity, roles ...domain.Role) error {
	if ident == nil {
		return domain.ErrUnauthenticated
	}
	for _, r := range roles {
		if ident.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	az := &stubAuthorizer{
		accept:   "good-token",
		identity: &domain.Identity{UserID: "user_1", Email: "a@b.com", Role: domain.RoleMentor},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(az)
	h := mw(func(c echo.Context) error {
		called = true
		ident, _ := c.Get(handler.IdentityKey).(*domain.Identity)
		if ident == nil || ident.UserID != "user_1" {
			t.Fatalf("identity not injected: %+v", ident)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth(&stubAuthorizer{accept: "good-token"})
	h := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := h(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	e := echo.New()
	for _, header := range []string{"good-token", "Basic good-token", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		mw := Auth(&stubAuthorizer{accept: "good-token"})
		h := mw(func(c echo.Context) error {
			t.Fatalf("should not reach next for header %q", header)
			return nil
		})

		err := h(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %v", header, err)
		}
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Auth(&stubAuthorizer{accept: "good-token"})
	h := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := h(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/altdap/identity-service/internal/core/domain"
)

func runErrorHandler(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestErrorHandler_DomainMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrDuplicateEmail, http.StatusConflict},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{domain.ErrTokenExpired, http.StatusUnauthorized},
		{domain.ErrTokenInvalid, http.StatusUnauthorized},
		{domain.ErrTokenSignatureMismatch, http.StatusUnauthorized},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{domain.ErrInvalidRole, http.StatusBadRequest},
		{domain.ErrStorageUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		rec := runErrorHandler(t, tc.err)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Fatalf("%v: missing error envelope: %s", tc.err, rec.Body.String())
		}
	}
}

func TestErrorHandler_WrappedErrorsStillMap(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	rec := runErrorHandler(t, wrapped)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrapped sentinel, got %d", rec.Code)
	}
}

func TestErrorHandler_CredentialAndTokenFailuresShareShape(t *testing.T) {
	// The body must not reveal which verification step failed.
	expired := runErrorHandler(t, domain.ErrTokenExpired).Body.String()
	tampered := runErrorHandler(t, domain.ErrTokenSignatureMismatch).Body.String()
	malformed := runErrorHandler(t, domain.ErrTokenInvalid).Body.String()
	if tampered != malformed {
		t.Fatalf("tampered and malformed tokens should share a message: %q vs %q", tampered, malformed)
	}
	if !strings.Contains(expired, "token expired") {
		t.Fatalf("expired tokens may name expiry: %s", expired)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec := runErrorHandler(t, echo.NewHTTPError(http.StatusBadRequest, "email is required"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "email is required") {
		t.Fatalf("message lost: %s", rec.Body.String())
	}
}

func TestErrorHandler_UnknownErrorIsOpaque(t *testing.T) {
	rec := runErrorHandler(t, errors.New("mongo: socket was unexpectedly closed"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "socket") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

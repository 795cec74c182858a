package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/altdap/identity-service/internal/api/metrics"
	"github.com/altdap/identity-service/internal/core/domain"
	"github.com/altdap/identity-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Role          string `json:"role" validate:"required,oneof=teen guardian mentor admin"`
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	GuardianEmail string `json:"guardianEmail" validate:"omitempty,email"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type guardianConsentRequest struct {
	TeenUserID    string `json:"teenUserId" validate:"required"`
	GuardianName  string `json:"guardianName" validate:"required"`
	GuardianEmail string `json:"guardianEmail" validate:"required,email"`
	ApprovalCode  string `json:"approvalCode" validate:"required"`
}

// authResponse is the {user, tokens} envelope returned by signup, login and
// refresh. Tokens carry the raw refresh token; this response is the only
// place it ever appears.
type authResponse struct {
	User   *domain.User        `json:"user"`
	Tokens *domain.TokenBundle `json:"tokens"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type sessionsResponse struct {
	Sessions []*domain.Session `json:"sessions"`
}

type revokedResponse struct {
	Revoked int64 `json:"revoked"`
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func sessionMetadata(c echo.Context) ports.SessionMetadata {
	return ports.SessionMetadata{
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	}
}

// Signup creates an account and opens its first session.
//
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	result, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Email:         req.Email,
		Password:      req.Password,
		Role:          role,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		GuardianEmail: req.GuardianEmail,
	}, sessionMetadata(c))
	if err != nil {
		return err
	}

	metrics.SignupsTotal.WithLabelValues(string(role)).Inc()
	return c.JSON(http.StatusCreated, authResponse{User: result.User, Tokens: result.Tokens})
}

// Login verifies credentials and opens a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password, sessionMetadata(c))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{User: result.User, Tokens: result.Tokens})
}

// Refresh rotates a refresh token for a fresh bundle.
//
// @Summary      Rotate a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Current refresh token"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken, sessionMetadata(c))
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		return err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("rotated").Inc()
	return c.JSON(http.StatusOK, authResponse{User: result.User, Tokens: result.Tokens})
}

// Logout revokes the session behind a refresh token. Always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token to revoke"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}

	metrics.SessionsRevokedTotal.Inc()
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// RequestPasswordReset starts the reset flow. The response never reveals
// whether the email is registered.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// ConfirmPasswordReset sets a new password and revokes every open session.
//
// @Summary      Confirm a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetConfirmRequest  true  "Reset token and new password"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ConfirmPasswordReset(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// VerifyEmail consumes an email-verification token.
//
// @Summary      Verify an email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyEmailRequest  true  "Verification token"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// GuardianConsent records a guardian's approval of a Teen account.
//
// @Summary      Record guardian consent
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      guardianConsentRequest  true  "Consent details"
// @Success      200   {object}  domain.GuardianConsent
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/guardian-consent [post]
func (h *AuthHandler) GuardianConsent(c echo.Context) error {
	var req guardianConsentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	consent, err := h.authService.GuardianConsent(c.Request().Context(), ports.GuardianConsentInput{
		TeenUserID:    req.TeenUserID,
		GuardianName:  req.GuardianName,
		GuardianEmail: req.GuardianEmail,
		ApprovalCode:  req.ApprovalCode,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, consent)
}

// ListSessions returns the caller's open sessions.
//
// @Summary      List own sessions
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionsResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/sessions [get]
func (h *AuthHandler) ListSessions(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	sessions, err := h.authService.ListSessions(c.Request().Context(), ident.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionsResponse{Sessions: sessions})
}

// RevokeAllSessions revokes every one of the caller's sessions.
//
// @Summary      Revoke all own sessions
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  revokedResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/sessions [delete]
func (h *AuthHandler) RevokeAllSessions(c echo.Context) error {
	ident, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	n, err := h.authService.RevokeAllSessions(c.Request().Context(), ident.UserID)
	if err != nil {
		return err
	}

	metrics.SessionsRevokedTotal.Add(float64(n))
	return c.JSON(http.StatusOK, revokedResponse{Revoked: n})
}

// AdminListSessions returns any user's open sessions. Admin only.
//
// @Summary      List a user's sessions
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  sessionsResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /auth/admin/users/{id}/sessions [get]
func (h *AuthHandler) AdminListSessions(c echo.Context) error {
	sessions, err := h.authService.ListSessions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionsResponse{Sessions: sessions})
}

package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/altdap/identity-service/internal/api/handler"
	"github.com/altdap/identity-service/internal/api/middleware"
	"github.com/altdap/identity-service/internal/core/domain"
	"github.com/altdap/identity-service/internal/core/ports"
)

// RouterParams carries the wired services the router exposes. Construction
// of those services belongs to main; the router only maps them to routes.
type RouterParams struct {
	DB         *mongo.Database
	Redis      *redis.Client
	Auth       ports.AuthService
	Authorizer ports.Authorizer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(p RouterParams) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(p.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	authHandler := handler.NewAuthHandler(p.Auth)
	requireAuth := middleware.Auth(p.Authorizer)
	requireAdmin := middleware.RBAC(p.Authorizer, domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/password-reset/request", authHandler.RequestPasswordReset)
	e.POST("/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)
	e.POST("/auth/verify-email", authHandler.VerifyEmail)
	e.POST("/auth/guardian-consent", authHandler.GuardianConsent)

	// --- Session self-service ---
	e.GET("/auth/sessions", authHandler.ListSessions, requireAuth)
	e.DELETE("/auth/sessions", authHandler.RevokeAllSessions, requireAuth)
	e.GET("/auth/admin/users/:id/sessions", authHandler.AdminListSessions, requireAuth, requireAdmin)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(p.DB, p.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

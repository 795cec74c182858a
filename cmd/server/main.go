// Command server runs the identity service: account signup and login,
// access/refresh token issuance and rotation, password reset, email
// verification, and guardian consent for teen accounts.
//
// @title        AltDap Identity Service
// @version      1.0
// @description  Authentication and session lifecycle API for the AltDap platform.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/altdap/identity-service/internal/api"
	"github.com/altdap/identity-service/internal/core/service"
	"github.com/altdap/identity-service/internal/infrastructure/approval"
	"github.com/altdap/identity-service/internal/infrastructure/config"
	mongodb "github.com/altdap/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/altdap/identity-service/internal/infrastructure/db/redis"
	"github.com/altdap/identity-service/internal/infrastructure/notify"
	"github.com/altdap/identity-service/internal/infrastructure/workers"
	"github.com/altdap/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("disconnect mongodb")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("close redis")
		}
	}()

	users := mongodb.NewUserRepository(db)
	sessions := mongodb.NewSessionRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure user indexes")
	}
	if err := sessions.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure session indexes")
	}
	tokens := redisdb.NewTokenStore(rdb)

	// --- Core services ---
	issuer, err := service.NewTokenIssuer(cfg.JWT.AccessSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("token issuer")
	}

	hasher := workers.NewHasherPool(cfg.Auth.HashWorkers, cfg.Auth.BcryptCost, log)
	defer hasher.Close()

	authService, err := service.NewAuthService(service.AuthServiceParams{
		Users:          users,
		Sessions:       sessions,
		Tokens:         tokens,
		Issuer:         issuer,
		Hasher:         hasher,
		Notifier:       notify.NewLogNotifier(log),
		Approval:       approval.NewHMACVerifier(cfg.Auth.ConsentSecret),
		BcryptCost:     cfg.Auth.BcryptCost,
		ResetTokenTTL:  cfg.ResetTokenTTL(),
		VerifyTokenTTL: cfg.VerifyTokenTTL(),
		Logger:         log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("auth service")
	}

	authorizer := service.NewAuthorizer(issuer, users)

	e := api.NewRouter(api.RouterParams{
		DB:         db,
		Redis:      rdb,
		Auth:       authService,
		Authorizer: authorizer,
		Log:        log,
	})

	// --- Serve until signalled ---
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting identity service")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

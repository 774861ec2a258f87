// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

// Command api is the entry point for the Sentra IAM API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Compile the role hierarchy and initialize the token signer.
//  7. Wire domain services, start the token sweeper, register handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentrahq/sentra/internal/accounts"
	"github.com/sentrahq/sentra/internal/api"
	"github.com/sentrahq/sentra/internal/authz"
	"github.com/sentrahq/sentra/internal/factors"
	"github.com/sentrahq/sentra/internal/platform/clock"
	"github.com/sentrahq/sentra/internal/platform/config"
	"github.com/sentrahq/sentra/internal/platform/constants"
	"github.com/sentrahq/sentra/internal/platform/migration"
	pgstore "github.com/sentrahq/sentra/internal/platform/postgres"
	redisstore "github.com/sentrahq/sentra/internal/platform/redis"
	"github.com/sentrahq/sentra/internal/platform/sec"
	"github.com/sentrahq/sentra/internal/tokens"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "sentra"))
	slog.SetDefault(log)

	log.Info("[Sentra] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "sentra"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("token_backend", cfg.TokenBackend),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Runtime context for long-lived background work (sweeper, rate limiter
	// janitor). Cancelled once shutdown begins.
	runtimeCtx, runtimeCancel := context.WithCancel(context.Background())
	defer runtimeCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Identity Primitives ────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	hierarchy, err := authz.CompileFile(cfg.RolesPath)
	must(log, err, "compile role hierarchy")
	authzProvider := authz.NewProvider(hierarchy, log)

	// SIGHUP re-reads the roles file; a rejected file keeps the active table.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if rerr := authzProvider.Reload(runtimeCtx, cfg.RolesPath); rerr != nil {
				log.Error("role_hierarchy_reload_failed", slog.Any("error", rerr))
			}
		}
	}()

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	systemClock := clock.System{}

	var tokenStore tokens.TokenStore
	switch cfg.TokenBackend {
	case "redis":
		tokenStore = tokens.NewRedisTokenStore(rdb)
	default:
		tokenStore = tokens.NewPostgresTokenStore(pool)
	}

	ledger := tokens.NewLedger(tokenStore, systemClock, log)
	sweeper := tokens.NewSweeper(tokenStore, systemClock, log, cfg.SweepBatchSize, cfg.SweepInterval)
	go sweeper.Run(runtimeCtx)

	accountStore := accounts.NewPostgresAccountStore(pool)
	factorStore := factors.NewPostgresFactorStore(pool)

	factorService := factors.NewService(factorStore, accounts.StoreGate{Store: accountStore}, systemClock, log)
	tracker := accounts.NewTracker(accountStore, systemClock, log, cfg.LockoutThreshold, cfg.LockoutDuration)
	accountService := accounts.NewService(accountStore, ledger, factorService, tracker, jwtSvc, systemClock, log, accounts.TTLConfig{
		Verification: cfg.VerificationTokenTTL,
		Reset:        cfg.ResetTokenTTL,
		Access:       cfg.AccessTokenTTL,
	})

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Accounts:  accounts.NewHandler(accountService),
		Factors:   factors.NewHandler(factorService),
		Authz:     authz.NewHandler(authzProvider),
		Tokens:    tokens.NewHandler(sweeper),
	}

	server := api.NewServer(runtimeCtx, cfg, log, jwtSvc, authzProvider, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Stop background workers before draining the listener.
	runtimeCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

// Copyright (c) 2026 Sentra. All rights reserved.
// Author: platform@sentrahq.io

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sentrahq/sentra/internal/accounts"
	"github.com/sentrahq/sentra/internal/authz"
	"github.com/sentrahq/sentra/internal/factors"
	"github.com/sentrahq/sentra/internal/platform/config"
	"github.com/sentrahq/sentra/internal/platform/constants"
	"github.com/sentrahq/sentra/internal/platform/middleware"
	"github.com/sentrahq/sentra/internal/tokens"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Accounts handles the account lifecycle (register, verify, login, reset).
	Accounts *accounts.Handler

	// Factors manages the credential inventory.
	Factors *factors.Handler

	// Authz exposes privilege introspection.
	Authz *authz.Handler

	// Tokens exposes token maintenance.
	Tokens *tokens.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, resolver middleware.PrivilegeResolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {

		// Public account lifecycle flows.
		api.Mount("/auth", h.Accounts.Routes())

		// Self-service surfaces behind an authenticated session.
		api.Group(func(authenticated chi.Router) {
			authenticated.Use(middleware.RequireAuth)
			authenticated.Mount("/accounts", h.Accounts.MeRoutes())
			authenticated.Mount("/factors", h.Factors.Routes())
			authenticated.Mount("/privileges", h.Authz.Routes())
		})

		// Administrative surfaces behind explicit privileges.
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireAuth)

			admin.With(middleware.RequirePrivilege(resolver, authz.PrivManageUsers)).
				Mount("/accounts", h.Accounts.AdminRoutes())
			admin.With(middleware.RequirePrivilege(resolver, authz.PrivManageTokens)).
				Mount("/tokens", h.Tokens.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}

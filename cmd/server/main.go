// Package main is the entry point for the hostel administration server.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings via Koanf v2 (defaults, YAML, env)
//  2. Logging: structured zerolog output
//  3. Document store: BadgerDB for users, sessions, and records
//  4. Authorization: enforcement-mode controller, audit logger, middleware
//  5. HTTP server: chi router under a suture supervision tree
//
// For JWT bearer authentication set JWT_SECRET to a 32+ character secret.
// An initial administrator account can be bootstrapped on first start with
// ADMIN_EMAIL and ADMIN_PASSWORD.
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests, flushes the audit
// buffer, and closes the store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/api"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/auth"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/config"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/logging"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/models"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/store"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("mode", cfg.Authz.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting hostel administration server")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Document store
	db, err := store.Open(store.Options{
		Path:     cfg.Database.Path,
		InMemory: cfg.Database.InMemory,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Store close failed")
		}
	}()

	users := store.NewUserStore(db)
	if err := bootstrapAdmin(ctx, users, cfg); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	// Session store
	var sessions auth.SessionStore
	switch cfg.Security.SessionStore {
	case "memory":
		sessions = auth.NewMemorySessionStore()
	default:
		sessions = auth.NewBadgerSessionStore(db)
	}

	// Bearer tokens are optional; without a secret only cookie sessions work.
	var tokens *auth.TokenManager
	if cfg.Security.JWTSecret != "" {
		tokens, err = auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.SessionTTL)
		if err != nil {
			return fmt.Errorf("token manager: %w", err)
		}
	} else {
		logging.Warn().Msg("JWT_SECRET not set, bearer token authentication disabled")
	}

	// Authorization plumbing
	controller := authz.NewController(
		cfg.EnforcementMode(),
		cfg.Authz.EnforcedRouteKeys,
		cfg.Authz.EnforcedCapabilityKeys,
	)
	audit := authz.NewAuditLogger(authz.AuditConfig{
		Enabled:    cfg.Authz.AuditEnabled,
		LogAllowed: cfg.Authz.AuditLogAllowed,
		BufferSize: cfg.Authz.AuditBufferSize,
	})
	defer audit.Close()

	access := authz.NewMiddleware(controller, audit, cfg.Authz.DiagnosticLogging)

	sessionMW := auth.NewSessionMiddleware(sessions, users, tokens, &auth.SessionMiddlewareConfig{
		CookieName:     cfg.Security.CookieName,
		SessionTTL:     cfg.Security.SessionTTL,
		SlidingSession: true,
		CookiePath:     "/",
		CookieSecure:   cfg.Security.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})

	handlers := api.NewHandlers(db, users, sessions, tokens,
		cfg.Security.SessionTTL, cfg.Security.CookieName, cfg.Security.CookieSecure)

	chiMW := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:   cfg.Security.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type", "Authorization"},
		CORSAllowCredentials: true,
		CORSMaxAge:           86400,
		LoginRateLimit:       cfg.Security.LoginRateLimit,
		LoginRateWindow:      cfg.Security.LoginRateWindow,
	})

	router := api.NewRouter(&api.RouterConfig{
		Handlers: handlers,
		Sessions: sessionMW,
		Access:   access,
		Chi:      chiMW,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	// Supervision tree
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(supervisor.NewSessionJanitorService(sessions, cfg.Security.SessionCleanup))

	logging.Info().Str("addr", server.Addr).Msg("Serving")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info().Msg("Server stopped gracefully")
	return nil
}

// bootstrapAdmin creates the initial administrator account when ADMIN_EMAIL
// and ADMIN_PASSWORD are set and no user with that email exists.
func bootstrapAdmin(ctx context.Context, users *store.UserStore, cfg *config.Config) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password, cfg.Security.BcryptCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &models.User{
		ID:           "admin-" + now.Format("20060102150405"),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Put(ctx, admin); err != nil {
		return err
	}
	logging.Info().Str("email", email).Msg("Bootstrapped administrator account")
	return nil
}

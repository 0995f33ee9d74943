package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/blogem/admin-console/access"
	"github.com/blogem/admin-console/authenticator"
	"github.com/blogem/admin-console/config"
	"github.com/blogem/admin-console/controllers"
	"github.com/blogem/admin-console/database"
	authmiddleware "github.com/blogem/admin-console/middleware"
	"github.com/blogem/admin-console/repositories"
	"github.com/blogem/admin-console/services"
	"github.com/blogem/admin-console/telemetry"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.TraceStdout)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		return err
	}
	defer database.CloseDB()

	gate := access.NewGate(access.DefaultPolicy())
	repos := repositories.NewRepositories(database.GetDB())
	srvs := services.NewServices(repos, services.Options{Gate: gate, ReasonMinLength: cfg.ReasonMinLength})
	ctrl := controllers.NewControllers(srvs, gate)

	var provider authenticator.Provider
	if cfg.OIDC.Enabled() {
		provider, err = authenticator.NewOpenIDProvider(ctx, authenticator.OpenIDConfig{
			Domain:       cfg.OIDC.Domain,
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			CallbackURL:  cfg.OIDC.CallbackURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize OpenID provider: %w", err)
		}
	}

	var verifier authmiddleware.TokenVerifier
	if cfg.JWTSecret != "" {
		issuer, err := authenticator.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
		if err != nil {
			return err
		}
		verifier = issuer
	}

	r, err := setupRouter(cfg, ctrl, provider, verifier)
	if err != nil {
		return fmt.Errorf("failed to setup router: %w", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("admin console starting", "port", cfg.Port, "database", cfg.DatabasePath,
			"oidc", cfg.OIDC.Enabled(), "bearer_tokens", verifier != nil)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// setupRouter configures all routes
func setupRouter(
	cfg *config.Config,
	ctrl *controllers.Controllers,
	provider authenticator.Provider,
	verifier authmiddleware.TokenVerifier,
) (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	lifetime := int64(cfg.SessionLifetime.Seconds())
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "admin_console_session",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     lifetime,
		Maxlifetime:    lifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// PUBLIC ROUTES (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "admin-console"}`)
	})
	r.Handle("/metrics", promhttp.Handler())

	if provider != nil {
		r.Get("/login", ctrl.Auth.Login(provider))
		r.Get("/callback", ctrl.Auth.Callback(provider, cfg.OIDC.RoleClaim))
		r.Post("/logout", ctrl.Auth.Logout)
	}

	// PROTECTED ROUTES (an authenticated actor is required)
	r.Route("/api", func(r chi.Router) {
		r.Use(authmiddleware.RequireActor(verifier))
		r.Use(authmiddleware.MutationLogger)
		ctrl.APIRoutes(r)
	})

	return r, nil
}

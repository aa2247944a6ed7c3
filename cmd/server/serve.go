package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/solvix/solvix/internal/api"
	"github.com/solvix/solvix/internal/config"
	"github.com/solvix/solvix/internal/metrics"
	"github.com/solvix/solvix/internal/middleware"
	"github.com/solvix/solvix/internal/problem"
	"github.com/solvix/solvix/internal/session"
	"github.com/solvix/solvix/internal/shared"
	"github.com/solvix/solvix/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP API. Configuration is read from the environment and,
when present, a .env file in the working directory.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("Starting server", "port", cfg.Port, "backend", cfg.DB.Backend)

	// Initialize dependencies.
	docs, err := openStore(cmd.Context(), cfg)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return err
	}
	defer func() {
		if closeErr := docs.Close(); closeErr != nil {
			slog.Error("Failed to close document store", "error", closeErr)
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(cmd.Context(), 10*time.Second)
	err = docs.Ping(pingCtx)
	cancelPing()
	if err != nil {
		slog.Error("Database health check failed", "error", err)
		return err
	}
	slog.Info("Database connected", "backend", docs.Backend())

	// Initialize services.
	m := metrics.New()
	problems := problem.NewStore(docs, m, problem.Limits{
		Default: cfg.Problems.DefaultLimit,
		Max:     cfg.Problems.MaxLimit,
	})
	sessions := session.NewManager(docs, problems, m)

	// Initialize handlers.
	baseHandler := api.NewHandler(problems, sessions)
	healthHandler := api.NewHealthHandler(docs, cfg)
	problemHandler := api.NewProblemHandler(baseHandler)
	sessionHandler := api.NewSessionHandler(baseHandler)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics(m))
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	healthHandler.RegisterHealth(r)
	problemHandler.RegisterRoutes(r)
	sessionHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			slog.Error("Server failed", "error", err)
			return err
		}
	}
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server stopped successfully")
	return nil
}

// openStore connects the configured document store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.DB.Backend {
	case config.BackendSQLite:
		return store.NewSQLite(cfg.DB.Path, shared.RetryPolicy{
			MaxRetries: cfg.DB.MaxRetries,
			BaseDelay:  cfg.DB.RetryBaseDelay,
		})
	case config.BackendMongo:
		return store.NewMongo(ctx, cfg.DB.URL, cfg.DB.Name)
	case config.BackendMemory:
		slog.Warn("Using in-memory store; data is lost on restart")
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown DB_BACKEND %q", cfg.DB.Backend)
	}
}

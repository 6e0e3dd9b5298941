// Manas - Mood-Tracking Chat Server
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/manasapp/manas/internal/analyzer"
	"github.com/manasapp/manas/internal/api"
	"github.com/manasapp/manas/internal/config"
	"github.com/manasapp/manas/internal/genai"
	"github.com/manasapp/manas/internal/identity"
	"github.com/manasapp/manas/internal/middleware"
	"github.com/manasapp/manas/internal/session"
	"github.com/manasapp/manas/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	generator, err := genai.NewOpenAIClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	if err != nil {
		slog.Error("Failed to initialize generation client", "error", err)
		os.Exit(1)
	}

	idClient, err := identity.NewClient(cfg.IdentityAPIKey, cfg.IdentityBaseURL)
	if err != nil {
		slog.Error("Failed to initialize identity client", "error", err)
		os.Exit(1)
	}

	// Initialize services.
	persister := session.NewPersister(repo, cfg.PersistQueueSize)
	defer persister.Close()

	orchestrator := session.NewOrchestrator(
		repo,
		analyzer.NewMoodAnalyzer(generator),
		analyzer.NewSessionAnalyzer(generator),
		persister,
	)

	// Initialize handlers.
	handler := api.NewHandler(orchestrator, idClient)
	healthHandler := api.NewHealthHandler(repo)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes.
		r.Get("/hello", api.Hello)
		healthHandler.RegisterReady(r)

		// Authenticated routes.
		r.Group(func(r chi.Router) {
			r.Use(identity.Middleware(idClient))
			handler.RegisterRoutes(r)
		})
	})

	// Create server.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can be slow
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

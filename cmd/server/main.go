package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	geminichat "github.com/tuanvm/geminichat"
	"github.com/tuanvm/geminichat/internal/config"
	"github.com/tuanvm/geminichat/internal/handler"
	"github.com/tuanvm/geminichat/internal/middleware"
	"github.com/tuanvm/geminichat/internal/repository"
	"github.com/tuanvm/geminichat/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(geminichat.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories and services
	chats := repository.NewChatRepository(pool)
	limits := repository.NewRateLimitRepository(pool)
	gemini := service.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GenerationTimeout)
	chat := service.NewChatService(cfg, gemini, chats)

	// Initialize handler and routes
	h := handler.New(handler.Deps{
		Cfg:  cfg,
		Chat: chat,
		DB:   pool,
	})

	mux := http.NewServeMux()
	h.Register(mux)

	var root http.Handler = mux
	root = middleware.RateLimit(limits, cfg.RateLimitPerMinute)(root)
	root = middleware.CORS(cfg.AllowedOrigin)(root)
	root = middleware.Logging()(root)
	root = middleware.Recover()(root)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     root,
		ReadTimeout: config.ReadTimeout,
		// The response cannot start before the generation call returns.
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  config.IdleTimeout,
	}

	// Start stale rate-limit window cleanup goroutine
	go func() {
		ticker := time.NewTicker(config.StaleWindowCleanup)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := limits.CleanupStale(context.Background(), config.StaleWindowAge); err != nil {
					slog.Error("cleanup rate limit windows", "error", err)
				}
			}
		}
	}()

	// Start server
	go func() {
		slog.Info("starting server", "port", cfg.Port, "model", cfg.DefaultModel)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown server", "error", err)
	}
	slog.Info("server stopped gracefully")
}

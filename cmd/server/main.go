// Package main is the entrypoint for the ReelForge API server.
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

	"github.com/joho/godotenv"
	"github.com/lucasverdier/reelforge/internal/ai"
	"github.com/lucasverdier/reelforge/internal/api"
	"github.com/lucasverdier/reelforge/internal/api/handler"
	mw "github.com/lucasverdier/reelforge/internal/api/middleware"
	"github.com/lucasverdier/reelforge/internal/api/response"
	"github.com/lucasverdier/reelforge/internal/cache"
	"github.com/lucasverdier/reelforge/internal/config"
	"github.com/lucasverdier/reelforge/internal/pipeline"
	"github.com/lucasverdier/reelforge/internal/publish"
	"github.com/lucasverdier/reelforge/internal/render"
	"github.com/lucasverdier/reelforge/internal/store"
	"github.com/lucasverdier/reelforge/internal/videogen"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — .env is optional, real env vars win
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	// 6. Create store
	pgStore := store.NewPostgresStore(pool)

	// 7. Assemble the generation pipeline
	veo := videogen.NewVeoClient(cfg.VideoGen, cfg.AI.Gemini)
	generator := videogen.NewGenerator(veo, cfg.VideoGen.MaxClips)
	gateway := render.NewGateway(cfg.Render)
	orchestrator := pipeline.NewOrchestrator(pgStore, redisCache, aiProvider, generator, gateway)

	// 8. Assemble the publisher
	instagram := publish.NewInstagramClient(cfg.Instagram)
	tiktok := publish.NewTikTokClient(cfg.TikTok)
	publisher := publish.NewPublisher(pgStore, instagram, tiktok)

	// 9. Build router with dependencies
	auth := mw.NewAuth(cfg.Auth.APIKeyHash)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:   healthHandler(pgStore, redisCache),
		GenerateHandler: handler.NewGenerateHandler(orchestrator, pgStore),
		GetReelHandler:  handler.NewGetReelHandler(pgStore, redisCache),
		PublishHandler:  handler.NewPublishHandler(publisher),
	}

	router := api.NewRouter(deps)

	// 10. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	// WriteTimeout must cover a synchronous publish, which can poll platform
	// containers for up to 2.5 minutes per platform.
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/compress/gzhttp"
	"github.com/newsroom-api/internal/api"
	"github.com/newsroom-api/internal/auth"
	"github.com/newsroom-api/internal/config"
	"github.com/newsroom-api/internal/database"
	"github.com/newsroom-api/internal/repository"
	"github.com/newsroom-api/internal/service"
	"github.com/newsroom-api/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting newsroom API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	tokens, closeRedis, err := newTokenService(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}
	defer closeRedis()

	// Initialize repositories and services
	repos := repository.New(db)
	services := service.NewServices(repos, tokens, cfg, log)

	if cfg.Seed.Enabled {
		seed(context.Background(), services, cfg, log)
	}

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("legacy_dir", cfg.Legacy.Dir).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

// newTokenService wires refresh token revocation to Redis when configured
func newTokenService(cfg *config.Config, log zerolog.Logger) (*auth.TokenService, func(), error) {
	tokenCfg := auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}
	if !cfg.Redis.Enabled() {
		log.Info().Msg("Redis not configured; refresh tokens are not revocable")
		tokens, err := auth.NewTokenService(tokenCfg)
		return tokens, func() {}, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Refresh token revocation enabled")

	tokens, err := auth.NewTokenService(tokenCfg, auth.WithRevocationStore(auth.NewRedisRevocationStore(client)))
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return tokens, func() { client.Close() }, nil
}

func seed(ctx context.Context, services *service.Services, cfg *config.Config, log zerolog.Logger) {
	if _, err := services.Setup.EnsureDefaultCategories(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default categories")
	}
	if _, _, err := services.Setup.EnsureAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}
}

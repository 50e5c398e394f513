package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gatherly/guestlist/internal/config"
	"github.com/gatherly/guestlist/internal/database"
	"github.com/gatherly/guestlist/internal/docstore"
	"github.com/gatherly/guestlist/internal/handler"
	"github.com/gatherly/guestlist/internal/middleware"
	"github.com/gatherly/guestlist/internal/queue"
	"github.com/gatherly/guestlist/internal/reconcile"
	"github.com/gatherly/guestlist/internal/repository"
	"github.com/gatherly/guestlist/internal/router"
)

func main() {
	// Missing .env is fine in production where the environment is real.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("ensure schema")
	}
	cancel()

	store := docstore.NewMySQL(db)
	orch := reconcile.NewOrchestrator(store, log)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and caching disabled")
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterGuest(e, handler.NewGuestHandler(orch, store, log), limit, cache)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg,
		repository.NewUserRepo(db), repository.NewTokenRepo(db)), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(orch, store, log), cfg.JWTSecret)

	amqpURL := os.Getenv("RABBITMQ_URL")
	if amqpURL == "" {
		amqpURL = os.Getenv("AMQP_URL")
	}
	go func() {
		if err := queue.StartSyncConsumer(amqpURL, orch, log); err != nil {
			log.Error().Err(err).Msg("sync consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

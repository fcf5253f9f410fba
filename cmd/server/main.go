package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/community-amenities/internal/config"
	"github.com/iliyamo/community-amenities/internal/database"
	"github.com/iliyamo/community-amenities/internal/handler"
	"github.com/iliyamo/community-amenities/internal/logger"
	"github.com/iliyamo/community-amenities/internal/middleware"
	"github.com/iliyamo/community-amenities/internal/queue"
	"github.com/iliyamo/community-amenities/internal/repository"
	"github.com/iliyamo/community-amenities/internal/router"
	"github.com/iliyamo/community-amenities/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "community-amenities"})

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer db.Close()

	redisCfg := config.LoadRedisConfig()
	rdb := config.NewRedisClient(redisCfg)
	if rdb == nil {
		log.Warn("redis unreachable; rate limiting and caching disabled", "addr", redisCfg.Addr)
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Events are best effort.  A nil publisher keeps the service silent.
	eventsCfg := config.LoadEventsConfig()
	var events service.EventPublisher
	if eventsCfg.Enabled {
		pub := queue.NewPublisher(eventsCfg, log)
		defer pub.Close()
		events = pub
	}
	if eventsCfg.ConsumerEnabled {
		go func() {
			if err := queue.StartReservationConsumer(ctx, eventsCfg, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("reservation consumer stopped", "error", err)
			}
		}()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	amenities := repository.NewAmenityRepo(db)
	reservations := repository.NewReservationRepo(db)

	cacheCfg := config.LoadCacheConfig()
	svc := service.NewReservationService(amenities, reservations, events, log)

	e := router.New(router.Deps{
		JWTSecret:    cfg.JWTSecret,
		Log:          log,
		DB:           db,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        cacheCfg,
		Auth:         handler.NewAuthHandler(cfg, users, tokens, log),
		Amenities:    handler.NewAmenityHandler(amenities, middleware.NewCacheInvalidator(cacheCfg, rdb, log), log),
		Reservations: handler.NewReservationHandler(svc, log),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/adapters/http_server"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/adapters/observability"
	redisad "github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/adapters/redis"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/app"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/shared"
	mysqlrepo "github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable; inventory reads go to the database")
	}
	q := app.NewQueryService(repo, cache, cfg.InventoryCacheTTL)

	rooms, err := q.Rooms(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load inventory failed")
	}
	if err := domain.ValidateInventory(rooms); err != nil {
		log.Fatal().Err(err).Msg("inventory invalid; run the provisioner")
	}
	log.Info().Int("rooms", len(rooms)).Msg("inventory ok")

	b := app.NewBookingService(q, repo, cfg.CommitAttempts)

	// http
	srv := server.New(server.WithRequestTimeout(cfg.RequestTimeout))
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:         q,
		B:         b,
		JWTSecret: []byte(cfg.JWTSecret),
		Limiter:   server.NewUserLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
	_ = cache.Close()
	_ = db.Close()
	log.Info().Msg("API stopped")
}

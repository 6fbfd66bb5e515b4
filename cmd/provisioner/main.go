package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/adapters/observability"
	redisad "github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/adapters/redis"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/app"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/domain"
	"github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/shared"
	mysqlrepo "github.com/Coder-Rutvik/hotel-reservation-system-backend/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	inventory := domain.DefaultInventory()
	if err := domain.ValidateInventory(inventory); err != nil {
		log.Fatal().Err(err).Msg("default inventory invalid")
	}
	log.Info().Int("rooms", len(inventory)).Int("workers", cfg.ProvisionWorkers).Msg("provisioner starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	byFloor := domain.GroupByFloor(inventory)

	sem := semaphore.NewWeighted(int64(max(cfg.ProvisionWorkers, 1)))
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for f := domain.MinFloor; f <= domain.MaxFloor; f++ {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(floor int, rooms []domain.Room) {
			defer wg.Done()
			defer sem.Release(1)

			if err := repo.UpsertRooms(ctx, rooms); err != nil {
				log.Warn().Int("floor", floor).Err(err).Msg("provision floor failed")
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			log.Info().Int("floor", floor).Int("rooms", len(rooms)).Msg("floor provisioned")
		}(f, byFloor[f])
	}

	wg.Wait()
	if failed > 0 {
		log.Fatal().Int("floors", failed).Msg("provisioning incomplete")
	}

	// the API caches the room list; drop it so the next read sees this run
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(repo, cache, cfg.InventoryCacheTTL)
	if err := q.InvalidateRooms(ctx); err != nil {
		log.Warn().Err(err).Msg("inventory cache invalidation failed")
	}
	log.Info().Msg("provisioning completed")
}

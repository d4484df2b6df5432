package main

import (
	"context"
	"database/sql"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"sailhaven/internal/adapters/catalog"
	"sailhaven/internal/adapters/observability"
	redisad "sailhaven/internal/adapters/redis"
	"sailhaven/internal/app"
	"sailhaven/internal/shared"
	mysqlrepo "sailhaven/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, "importer")

	log.Info().
		Str("base", cfg.CatalogBase).
		Int("workers", cfg.ImportWorkers).
		Msg("importer starting")

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := catalog.New(cfg.CatalogBase, cfg.CatalogKey, cfg.CatalogRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog client")
	}
	if err := client.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("catalog unreachable")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	imp := app.NewImportService(client, repo, cache, cfg.CatalogOwnerID)
	ids, err := imp.ListIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing catalog ids failed")
	}
	log.Info().Int("count", len(ids)).Msg("catalog ids fetched")

	sem := semaphore.NewWeighted(int64(max(cfg.ImportWorkers, 1)))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, id := range ids {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("import interrupted")
			break
		}

		wg.Add(1)
		go func(sourceID string) {
			defer wg.Done()
			defer sem.Release(1)

			err := imp.ImportYacht(ctx, sourceID)
			observability.ObserveImport(err)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("source_id", sourceID).Err(err).Msg("import failed")
				return
			}
			log.Debug().Str("source_id", sourceID).Msg("import ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int("total", len(ids)).Int64("failed", failed.Load()).Msg("import completed")
}

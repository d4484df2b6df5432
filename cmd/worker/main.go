package main

import (
	"github.com/rs/zerolog/log"

	"sailhaven/internal/adapters/notify"
	"sailhaven/internal/adapters/observability"
	"sailhaven/internal/shared"
)

func main() {
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, "worker")

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	srv := notify.NewServer(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.WorkerConcurrency)
	proc := notify.NewProcessor(notify.LogDelivery{})

	log.Info().Str("redis", cfg.RedisAddr).Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	// Run blocks until SIGTERM/SIGINT and drains in-flight tasks.
	if err := srv.Run(proc.Mux()); err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}
}

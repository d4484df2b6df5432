package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "sailhaven/internal/adapters/http_server"
	"sailhaven/internal/adapters/identity"
	"sailhaven/internal/adapters/notify"
	"sailhaven/internal/adapters/observability"
	redisad "sailhaven/internal/adapters/redis"
	"sailhaven/internal/app"
	"sailhaven/internal/domain"
	"sailhaven/internal/shared"
	mysqlrepo "sailhaven/internal/storage/mysql"
	"sailhaven/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api")

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	repo := mysqlrepo.New(db)
	if n, err := repo.PurgeRevoked(ctx, time.Now()); err != nil {
		log.Warn().Err(err).Msg("purge revoked tokens failed")
	} else if n > 0 {
		log.Info().Int64("purged", n).Msg("expired token revocations removed")
	}

	favDB, err := sqlite.Open(cfg.FavoritesDB)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.FavoritesDB).Msg("favorites db open failed")
	}
	favorites := sqlite.NewFavoritesStore(favDB)
	unsubscribe := favorites.Subscribe(func(c domain.FavoritesChange) {
		log.Debug().Str("party_id", c.PartyID).Str("yacht_id", c.YachtID).
			Bool("added", c.Added).Int("count", c.Count).Msg("favorites changed")
	})
	defer unsubscribe()

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	queue := notify.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer queue.Close()

	if cfg.JWTSecret == "" {
		if cfg.JWTSecret, err = identity.GenerateSecret(); err != nil {
			log.Fatal().Err(err).Msg("generating JWT secret failed")
		}
		log.Warn().Msg("JWT secret auto-generated (tokens will be invalidated on restart)")
	}
	idp, err := identity.NewProvider(repo, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("identity provider")
	}
	gate := app.NewSessionGate(idp)
	listings := app.NewListingService(gate, repo, cache, cfg.CacheTTL)

	h := &server.Handlers{
		Gate:      gate,
		Auth:      idp,
		Listings:  listings,
		Bookings:  app.NewBookingService(gate, repo, repo, notify.NewNotifier(queue)),
		Favorites: app.NewFavoritesService(gate, favorites, listings),
		Health: app.NewHealthCheck(cfg.HealthTTL, map[string]domain.Pinger{
			"mysql": repo,
			"redis": cache,
		}),
	}

	// http
	srv := server.New(server.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TrustProxy:     cfg.TrustProxy,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

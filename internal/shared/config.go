package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	JWTSecret string
	TokenTTL  time.Duration

	CatalogBase    string
	CatalogKey     string
	CatalogRPS     int
	CatalogOwnerID string
	ImportWorkers  int

	CacheTTL  time.Duration
	HealthTTL time.Duration

	FavoritesDB    string
	RateLimitRPS   float64
	RateLimitBurst int
	TrustProxy     bool

	WorkerConcurrency int
}

// Load reads the environment, after an optional .env file in the working
// directory. Values already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be loaded")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/sailhaven?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		JWTSecret: env("JWT_SECRET", ""),
		TokenTTL:  time.Duration(atoi("TOKEN_TTL_HOURS", 72)) * time.Hour,

		CatalogBase:    env("CATALOG_BASE_URL", "https://partners.example.com/v1"),
		CatalogKey:     env("CATALOG_API_KEY", ""),
		CatalogRPS:     atoi("CATALOG_RPS", 5),
		CatalogOwnerID: env("CATALOG_OWNER_ID", "00000000-0000-0000-0000-000000000000"),
		ImportWorkers:  atoi("IMPORT_WORKERS", 8),

		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		HealthTTL: time.Duration(atoi("HEALTH_TTL_SECONDS", 10)) * time.Second,

		FavoritesDB:    env("FAVORITES_DB", "favorites.db"),
		RateLimitRPS:   atof("RATE_LIMIT_RPS", 20),
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 40),
		TrustProxy:     env("TRUST_PROXY", "false") == "true",

		WorkerConcurrency: atoi("WORKER_CONCURRENCY", 10),
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
	}
	return def
}

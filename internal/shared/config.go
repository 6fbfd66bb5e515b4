package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv            string
	HTTPAddr          string
	RequestTimeout    time.Duration
	MetricsAddr       string
	MySQLDSN          string
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	InventoryCacheTTL time.Duration
	JWTSecret         string
	CommitAttempts    int
	RateLimitRPS      float64
	RateLimitBurst    int
	ProvisionWorkers  int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first, without overriding variables already set.
func Load() Config {
	_ = godotenv.Load()

	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		RequestTimeout:    time.Duration(atoi("HTTP_REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		MetricsAddr:       env("METRICS_ADDR", ""),
		MySQLDSN:          env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisPass:         env("REDIS_PASSWORD", ""),
		RedisDB:           atoi("REDIS_DB", 0),
		InventoryCacheTTL: time.Duration(atoi("INVENTORY_CACHE_TTL_SECONDS", 3600)) * time.Second,
		JWTSecret:         env("JWT_SECRET", ""),
		CommitAttempts:    atoi("COMMIT_ATTEMPTS", 3),
		RateLimitRPS:      atof("RATE_LIMIT_RPS", 10),
		RateLimitBurst:    atoi("RATE_LIMIT_BURST", 20),
		ProvisionWorkers:  atoi("PROVISION_WORKERS", 4),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; authenticated routes will reject every request")
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
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

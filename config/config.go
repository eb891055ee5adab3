// Package config descreve a superfície de configuração do gateway.
//
// Os campos carregam tags do kong: cada opção pode vir por flag ou pela
// variável de ambiente indicada. LoadDotEnv carrega um .env antes do parse,
// sem sobrescrever o ambiente.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	authdomain "api-guard/middleware/auth/domain"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr  string `name:"listen-addr" env:"LISTEN_ADDR" default:":8080" help:"Address to listen on."`
	UpstreamURL string `name:"upstream-url" env:"UPSTREAM_URL" help:"API the gateway fronts (gateway serve only)."`

	SigningSecret string        `name:"signing-secret" env:"SIGNING_SECRET" help:"HMAC secret for bearer tokens (>= 32 bytes)."`
	TokenTTL      time.Duration `name:"token-ttl" env:"TOKEN_TTL" default:"1h" help:"Lifetime of issued tokens."`

	RateMaxRequests     int           `name:"max-requests-per-window" env:"RATE_MAX_REQUESTS" default:"60" help:"Requests admitted per client per window."`
	RateWindow          time.Duration `name:"window-duration" env:"RATE_WINDOW" default:"60s" help:"Sliding window length."`
	RateBackend         string        `name:"rate-backend" env:"RATE_BACKEND" default:"memory" enum:"memory,redis,bucket" help:"Window store: memory, redis or bucket (token bucket)."`
	RateIdleTTL         time.Duration `name:"rate-idle-ttl" env:"RATE_IDLE_TTL" default:"15m" help:"Drop in-memory client keys idle for this long."`
	RateCleanupEvery    time.Duration `name:"rate-cleanup-every" env:"RATE_CLEANUP_EVERY" default:"2m" help:"Janitor interval."`
	RateKeyHeader       string        `name:"rate-key-header" env:"RATE_KEY_HEADER" help:"Use this header as the client key when present."`
	TrustXFF            bool          `name:"trust-xff" env:"TRUST_XFF" help:"Use the first X-Forwarded-For address as the client key."`
	AddRateLimitHeaders bool          `name:"ratelimit-headers" env:"ADD_RATELIMIT_HEADERS" help:"Send X-RateLimit-* headers."`

	RateStats          string        `name:"rate-stats" env:"RATE_STATS" default:"prometheus" enum:"none,memory,redis,prometheus" help:"Where rate limit decisions are counted."`
	RateStatsPrefix    string        `name:"rate-stats-prefix" env:"RATE_STATS_PREFIX" default:"ratelimit:stats" help:"Redis key prefix for stats."`
	RateStatsTTL       time.Duration `name:"rate-stats-ttl" env:"RATE_STATS_TTL" default:"24h" help:"TTL of per-minute/per-key stats in Redis."`
	RateStatsTrackKeys bool          `name:"rate-stats-track-keys" env:"RATE_STATS_TRACK_KEYS" help:"Count stats per client key."`

	ScanBody      bool  `name:"scan-body" env:"SCAN_BODY" help:"Screen a bounded prefix of textual request bodies."`
	ScanBodyLimit int64 `name:"scan-body-limit" env:"SCAN_BODY_LIMIT" default:"4096" help:"Bytes of body inspected."`

	RedisAddr     string `name:"redis-addr" env:"REDIS_ADDR" help:"Redis address (rate-backend=redis or rate-stats=redis)."`
	RedisPassword string `name:"redis-password" env:"REDIS_PASSWORD" help:"Redis password."`
	RedisDB       int    `name:"redis-db" env:"REDIS_DB" default:"0" help:"Redis database."`

	ConcurrencyMax     int           `name:"concurrency-max" env:"CONCURRENCY_MAX" default:"100" help:"Max in-flight requests (0 disables)."`
	ConcurrencyTimeout time.Duration `name:"concurrency-timeout" env:"CONCURRENCY_TIMEOUT" default:"0s" help:"Wait for a slot before answering 503 (0 waits for the request context)."`

	LogLevel  string `name:"log-level" env:"LOG_LEVEL" default:"info" help:"debug, info, warn or error."`
	LogFormat string `name:"log-format" env:"LOG_FORMAT" default:"json" enum:"json,console" help:"Log encoding."`
}

// Validate cobre o que o parse não garante. Segredo curto é fatal.
func (c Config) Validate() error {
	if len(c.SigningSecret) < authdomain.MinSecretLen {
		return fmt.Errorf("SIGNING_SECRET: %w", authdomain.ErrSecretTooShort)
	}
	// iat/exp são gravados em segundos inteiros.
	if c.TokenTTL < time.Second {
		return errors.New("TOKEN_TTL must be >= 1s")
	}
	if c.RateMaxRequests <= 0 {
		return errors.New("RATE_MAX_REQUESTS must be > 0")
	}
	if c.RateWindow <= 0 {
		return errors.New("RATE_WINDOW must be > 0")
	}
	if c.ConcurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if c.NeedsRedis() && strings.TrimSpace(c.RedisAddr) == "" {
		return errors.New("REDIS_ADDR is required when RATE_BACKEND=redis or RATE_STATS=redis")
	}
	return nil
}

func (c Config) NeedsRedis() bool {
	return c.RateBackend == "redis" || c.RateStats == "redis"
}

// LoadDotEnv carrega os arquivos que existirem (padrão: ./.env).
// Variáveis já definidas no ambiente não são sobrescritas.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Package bootstrap transforma a configuração em componentes prontos:
// serviço de tokens, store de janela, stats e a chain de filtros.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"api-guard/config"
	authinfra "api-guard/middleware/auth/infra"
	"api-guard/middleware/chain"
	"api-guard/middleware/metrics"
	ratedomain "api-guard/middleware/ratelimit/domain"
	rateinfra "api-guard/middleware/ratelimit/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Pipeline struct {
	Chain   *chain.Chain
	Tokens  *authinfra.HMACTokenService
	Limiter ratedomain.WindowStore
	Stats   ratedomain.StatsStore
	Metrics *metrics.Pipeline

	redis *redis.Client
}

// Close libera a conexão com o Redis, se houver.
func (p *Pipeline) Close() error {
	if p.redis == nil {
		return nil
	}
	return p.redis.Close()
}

// Tokens constrói só o serviço de tokens (usado pelo comando token).
func Tokens(cfg config.Config) (*authinfra.HMACTokenService, error) {
	return authinfra.NewHMACTokenService([]byte(cfg.SigningSecret), cfg.TokenTTL)
}

// Build valida cfg e monta o pipeline. Os janitors dos stores em memória
// rodam até ctx encerrar.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	tokens, err := Tokens(cfg)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Tokens: tokens}
	if reg != nil {
		p.Metrics = metrics.NewPipeline(reg)
	}

	if cfg.NeedsRedis() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		p.redis = rdb
	}

	policy := ratedomain.Policy{MaxRequests: cfg.RateMaxRequests, Window: cfg.RateWindow}
	switch cfg.RateBackend {
	case "", "memory":
		s := rateinfra.NewWindowStore(policy,
			rateinfra.WithIdleTTL(cfg.RateIdleTTL),
			rateinfra.WithCleanupEvery(cfg.RateCleanupEvery),
		)
		s.StartJanitor(ctx)
		p.Limiter = s
	case "bucket":
		s := rateinfra.NewBucketStore(policy,
			rateinfra.WithBucketIdleTTL(cfg.RateIdleTTL),
			rateinfra.WithBucketCleanupEvery(cfg.RateCleanupEvery),
		)
		s.StartJanitor(ctx)
		p.Limiter = s
	case "redis":
		p.Limiter = rateinfra.NewRedisWindowStore(p.redis, policy)
	default:
		_ = p.Close()
		return nil, fmt.Errorf("unknown rate backend %q", cfg.RateBackend)
	}

	switch cfg.RateStats {
	case "", "none":
	case "memory":
		p.Stats = rateinfra.NewMemoryStatsStore(rateinfra.WithTrackKeys(cfg.RateStatsTrackKeys))
	case "redis":
		p.Stats = rateinfra.NewRedisStatsStore(p.redis,
			rateinfra.WithStatsPrefix(cfg.RateStatsPrefix),
			rateinfra.WithStatsTTL(cfg.RateStatsTTL),
			rateinfra.WithStatsTrackKeys(cfg.RateStatsTrackKeys),
		)
	case "prometheus":
		if p.Metrics == nil {
			_ = p.Close()
			return nil, errors.New("rate stats prometheus requires a metrics registerer")
		}
		p.Stats = rateinfra.NewPrometheusStatsStore(p.Metrics)
	default:
		_ = p.Close()
		return nil, fmt.Errorf("unknown rate stats sink %q", cfg.RateStats)
	}

	c, err := chain.New(chain.Config{
		Tokens:              tokens,
		Limiter:             p.Limiter,
		Stats:               p.Stats,
		KeyHeader:           cfg.RateKeyHeader,
		TrustXForwardedFor:  cfg.TrustXFF,
		AddRateLimitHeaders: cfg.AddRateLimitHeaders,
		ScanBody:            cfg.ScanBody,
		BodyLimit:           cfg.ScanBodyLimit,
		Logger:              log,
		Metrics:             p.Metrics,
	})
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.Chain = c

	log.Info("pipeline ready",
		zap.String("rate_backend", cfg.RateBackend),
		zap.Int("max_requests", cfg.RateMaxRequests),
		zap.Duration("window", cfg.RateWindow),
		zap.String("rate_stats", cfg.RateStats),
		zap.Bool("scan_body", cfg.ScanBody),
	)
	return p, nil
}

package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"api-guard/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore agrega decisões em hashes Redis:
//
//	<prefix>:total             allowed/denied/saturated (cumulativo, sem TTL)
//	<prefix>:minute:YYYYMMDDhhmm  série por minuto (com TTL)
//	<prefix>:route             "<METHOD> <path>:allowed|denied"
//	<prefix>:key:<cliente>     opcional, com TTL
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	ttl    time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "ratelimit:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fields devolve os campos incrementados para um evento: a decisão e, se o
// request admitido consumiu a última vaga da janela, "saturated".
func fields(ev domain.StatsEvent) []string {
	if !ev.Allowed {
		return []string{"denied"}
	}
	if ev.Remaining == 0 {
		return []string{"allowed", "saturated"}
	}
	return []string{"allowed"}
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	fs := fields(ev)

	// hash -> expira? O total e a tabela de rotas são cumulativos.
	type target struct {
		key    string
		expire bool
	}
	targets := []target{{key: s.prefix + ":total"}}
	if s.bucket == "minute" {
		targets = append(targets, target{key: s.prefix + ":minute:" + at.UTC().Format("200601021504"), expire: true})
	}
	if k := strings.TrimSpace(string(ev.Key)); s.trackKeys && k != "" {
		targets = append(targets, target{key: s.prefix + ":key:" + k, expire: true})
	}

	pipe := s.rdb.Pipeline()
	for _, tg := range targets {
		for _, f := range fs {
			pipe.HIncrBy(ctx, tg.key, f, 1)
		}
		if tg.expire && s.ttl > 0 {
			pipe.Expire(ctx, tg.key, s.ttl)
		}
	}
	if route := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path)); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+fs[0], 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis stats record: %w", err)
	}
	return nil
}

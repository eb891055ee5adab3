package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"api-guard/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// admitScript faz despejo + contagem + inserção numa única execução,
// o que dá a mesma linearizabilidade por chave do store em memória,
// agora compartilhada entre réplicas do gateway.
//
// KEYS[1] = chave; ARGV = now_ms, window_ms, max, member, cutoff_ms.
// Números chegam como string para não depender da formatação de float do Lua.
var admitScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[5])
local count = redis.call('ZCARD', KEYS[1])

local oldest = tonumber(ARGV[1])
local first = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end

if count >= tonumber(ARGV[3]) then
  return {0, count, oldest}
end

redis.call('ZADD', KEYS[1], ARGV[1], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return {1, count + 1, oldest}
`)

// RedisWindowStore é o sliding-window log distribuído (ZSET por chave).
type RedisWindowStore struct {
	rdb    redis.Scripter
	policy domain.Policy
	prefix string
}

type RedisWindowOption func(*RedisWindowStore)

func WithWindowPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindowStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisWindowStore(rdb redis.Scripter, policy domain.Policy, opts ...RedisWindowOption) *RedisWindowStore {
	s := &RedisWindowStore{
		rdb:    rdb,
		policy: policy.WithDefaults(),
		prefix: "ratelimit:window",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisWindowStore) Policy() domain.Policy { return s.policy }

func (s *RedisWindowStore) Admit(ctx context.Context, key domain.Key, now time.Time) (domain.Admission, error) {
	nowMs := now.UnixMilli()
	windowMs := s.policy.Window.Milliseconds()
	// membro único mesmo com vários requests no mesmo milissegundo / réplicas.
	member := fmt.Sprintf("%d:%s", nowMs, uuid.NewString())

	res, err := admitScript.Run(ctx, s.rdb,
		[]string{s.prefix + ":" + string(key)},
		strconv.FormatInt(nowMs, 10),
		strconv.FormatInt(windowMs, 10),
		strconv.Itoa(s.policy.MaxRequests),
		member,
		strconv.FormatInt(nowMs-windowMs, 10),
	).Int64Slice()
	if err != nil {
		return domain.Admission{}, fmt.Errorf("redis window admit: %w", err)
	}
	if len(res) != 3 {
		return domain.Admission{}, fmt.Errorf("redis window admit: unexpected reply %v", res)
	}

	resetIn := time.Duration(res[2]+windowMs-nowMs) * time.Millisecond
	if res[0] == 0 {
		return domain.Admission{Allowed: false, ResetIn: resetIn}, nil
	}
	return domain.Admission{
		Allowed:   true,
		Remaining: s.policy.MaxRequests - int(res[1]),
		ResetIn:   resetIn,
	}, nil
}

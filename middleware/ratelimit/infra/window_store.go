package infra

import (
	"context"
	"sync"
	"time"

	"api-guard/middleware/ratelimit/domain"

	"github.com/cespare/xxhash/v2"
)

const defaultShards = 64

// WindowStore é o sliding-window log em memória.
//
// Cada chave guarda os timestamps admitidos dentro da janela, em ordem.
// O mapa é dividido em shards (lock por shard só para achar/criar a entrada)
// e cada entrada tem o próprio mutex, então chaves diferentes não disputam
// o mesmo lock durante a contagem.
type WindowStore struct {
	policy       domain.Policy
	shards       []*windowShard
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type windowShard struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

type windowEntry struct {
	// lastSeen é protegido pelo mutex do shard.
	lastSeen time.Time

	mu  sync.Mutex
	log []time.Time
}

type WindowOption func(*WindowStore)

// WithIdleTTL define depois de quanto tempo sem requests a chave é descartada.
// Nunca menor que a janela.
func WithIdleTTL(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

func WithShards(n int) WindowOption {
	return func(s *WindowStore) {
		if n > 0 {
			s.shards = make([]*windowShard, n)
		}
	}
}

func NewWindowStore(policy domain.Policy, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		policy:       policy.WithDefaults(),
		shards:       make([]*windowShard, defaultShards),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idleTTL < s.policy.Window {
		s.idleTTL = s.policy.Window
	}
	for i := range s.shards {
		s.shards[i] = &windowShard{entries: make(map[string]*windowEntry)}
	}
	return s
}

func (s *WindowStore) Policy() domain.Policy      { return s.policy }
func (s *WindowStore) CleanupEvery() time.Duration { return s.cleanupEvery }

func (s *WindowStore) shard(key string) *windowShard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

func (s *WindowStore) entry(key string, now time.Time) *windowEntry {
	sh := s.shard(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	ent, ok := sh.entries[key]
	if !ok {
		ent = &windowEntry{}
		sh.entries[key] = ent
	}
	ent.lastSeen = now
	return ent
}

// Admit implementa domain.WindowStore. Nunca retorna erro.
func (s *WindowStore) Admit(_ context.Context, key domain.Key, now time.Time) (domain.Admission, error) {
	ent := s.entry(string(key), now)

	ent.mu.Lock()
	defer ent.mu.Unlock()

	// timestamps entram em ordem não-decrescente; basta olhar a frente.
	cutoff := now.Add(-s.policy.Window)
	i := 0
	for i < len(ent.log) && !ent.log[i].After(cutoff) {
		i++
	}
	ent.log = ent.log[i:]

	if len(ent.log) >= s.policy.MaxRequests {
		return domain.Admission{
			Allowed: false,
			ResetIn: ent.log[0].Add(s.policy.Window).Sub(now),
		}, nil
	}

	// now é lido antes do lock; dois requests da mesma chave podem chegar
	// fora de ordem. Grampear mantém o log ordenado (erra para o lado seguro).
	at := now
	if n := len(ent.log); n > 0 && ent.log[n-1].After(at) {
		at = ent.log[n-1]
	}
	ent.log = append(ent.log, at)
	return domain.Admission{
		Allowed:   true,
		Remaining: s.policy.MaxRequests - len(ent.log),
		ResetIn:   ent.log[0].Add(s.policy.Window).Sub(now),
	}, nil
}

// Len devolve quantos timestamps a chave guarda agora (sem despejar).
func (s *WindowStore) Len(key domain.Key) int {
	sh := s.shard(string(key))
	sh.mu.Lock()
	ent, ok := sh.entries[string(key)]
	sh.mu.Unlock()
	if !ok {
		return 0
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	return len(ent.log)
}

// Keys devolve o número de chaves rastreadas.
func (s *WindowStore) Keys() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// Cleanup remove chaves sem requests há mais de idleTTL. Como idleTTL >= janela,
// os timestamps dessas chaves já estariam todos fora da janela.
func (s *WindowStore) Cleanup(now time.Time) {
	cutoff := now.Add(-s.idleTTL)
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, ent := range sh.entries {
			if ent.lastSeen.Before(cutoff) {
				delete(sh.entries, k)
			}
		}
		sh.mu.Unlock()
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx context.Context) {
	runJanitor(ctx, s.cleanupEvery, s.Cleanup)
}

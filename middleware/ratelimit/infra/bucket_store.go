package infra

import (
	"context"
	"sync"
	"time"

	"api-guard/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// BucketStore é a alternativa aproximada ao sliding-window log: token bucket
// (x/time/rate) com capacidade MaxRequests e reposição de MaxRequests por janela.
//
// Ocupa memória constante por chave, mas permite rajadas na virada da janela.
type BucketStore struct {
	mu           sync.Mutex
	entries      map[string]*bucketEntry
	policy       domain.Policy
	every        rate.Limit
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type BucketOption func(*BucketStore)

func WithBucketIdleTTL(d time.Duration) BucketOption {
	return func(s *BucketStore) { s.idleTTL = d }
}

func WithBucketCleanupEvery(d time.Duration) BucketOption {
	return func(s *BucketStore) { s.cleanupEvery = d }
}

func NewBucketStore(policy domain.Policy, opts ...BucketOption) *BucketStore {
	policy = policy.WithDefaults()
	s := &BucketStore{
		entries:      make(map[string]*bucketEntry),
		policy:       policy,
		every:        rate.Every(policy.Window / time.Duration(policy.MaxRequests)),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BucketStore) Policy() domain.Policy { return s.policy }
func (s *BucketStore) RPS() float64          { return float64(s.every) }
func (s *BucketStore) Burst() int            { return s.policy.MaxRequests }

func (s *BucketStore) limiter(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.every, s.policy.MaxRequests)
	s.entries[key] = &bucketEntry{lim: lim, lastSeen: now}
	return lim
}

// Admit implementa domain.WindowStore. rate.Limiter já é seguro para uso concorrente.
func (s *BucketStore) Admit(_ context.Context, key domain.Key, now time.Time) (domain.Admission, error) {
	lim := s.limiter(string(key), now)
	perToken := s.policy.Window / time.Duration(s.policy.MaxRequests)

	if !lim.AllowN(now, 1) {
		return domain.Admission{Allowed: false, ResetIn: perToken}, nil
	}
	return domain.Admission{
		Allowed:   true,
		Remaining: int(lim.TokensAt(now)),
		ResetIn:   perToken,
	}, nil
}

func (s *BucketStore) Cleanup(now time.Time) {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

func (s *BucketStore) StartJanitor(ctx context.Context) {
	runJanitor(ctx, s.cleanupEvery, s.Cleanup)
}

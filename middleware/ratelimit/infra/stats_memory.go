package infra

import (
	"context"
	"maps"
	"sync"

	"api-guard/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
	// Saturated conta admissões que consumiram a última vaga da janela.
	Saturated int64
}

func (c *Counters) add(ev domain.StatsEvent) {
	if !ev.Allowed {
		c.Denied++
		return
	}
	c.Allowed++
	if ev.Remaining == 0 {
		c.Saturated++
	}
}

// StatsSnapshot é uma cópia consistente dos contadores.
type StatsSnapshot struct {
	Total   Counters
	ByRoute map[string]Counters
	ByKey   map[string]Counters
}

// MemoryStatsStore conta decisões em memória, sem expiração.
// Útil para testes e para o endpoint de debug do example-server.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byKey   map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

// WithTrackKeys liga a contagem por chave de cliente (cresce com o número de IPs).
func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]Counters),
		byKey:   make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev)

	c := s.byRoute[route]
	c.add(ev)
	s.byRoute[route] = c

	if s.trackKeys {
		k := s.byKey[string(ev.Key)]
		k.add(ev)
		s.byKey[string(ev.Key)] = k
	}
	return nil
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Total:   s.total,
		ByRoute: maps.Clone(s.byRoute),
		ByKey:   maps.Clone(s.byKey),
	}
}

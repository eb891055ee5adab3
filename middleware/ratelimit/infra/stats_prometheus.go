package infra

import (
	"context"

	"api-guard/middleware/metrics"
	"api-guard/middleware/ratelimit/domain"
)

// PrometheusStatsStore exporta as decisões como contador (sem label por chave
// ou rota, para não explodir cardinalidade).
type PrometheusStatsStore struct {
	m *metrics.Pipeline
}

func NewPrometheusStatsStore(m *metrics.Pipeline) *PrometheusStatsStore {
	return &PrometheusStatsStore{m: m}
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.m.RateDecision(ev.Allowed)
	return nil
}

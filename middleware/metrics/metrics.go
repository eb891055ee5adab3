// Package metrics registra os contadores Prometheus do pipeline de filtros.
//
// Todos os métodos aceitam receiver nil, para que os middlewares funcionem
// sem métricas configuradas.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StageInjection = "injection"
	StageRateLimit = "ratelimit"
)

type Pipeline struct {
	RequestsRejected *prometheus.CounterVec
	AuthOutcomes     *prometheus.CounterVec
	RateDecisions    *prometheus.CounterVec
}

// NewPipeline registra os coletores em reg (use prometheus.NewRegistry() em testes).
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	f := promauto.With(reg)
	return &Pipeline{
		RequestsRejected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiguard_requests_rejected_total",
				Help: "Requests short-circuited by a filter stage.",
			},
			[]string{"stage"},
		),
		AuthOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiguard_auth_outcomes_total",
				Help: "Authentication stage outcomes (authenticated, anonymous, malformed, bad_signature, expired).",
			},
			[]string{"outcome"},
		),
		RateDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiguard_ratelimit_decisions_total",
				Help: "Rate limiter admit decisions.",
			},
			[]string{"result"},
		),
	}
}

func (p *Pipeline) Rejected(stage string) {
	if p == nil {
		return
	}
	p.RequestsRejected.WithLabelValues(stage).Inc()
}

func (p *Pipeline) AuthOutcome(outcome string) {
	if p == nil {
		return
	}
	p.AuthOutcomes.WithLabelValues(outcome).Inc()
}

func (p *Pipeline) RateDecision(allowed bool) {
	if p == nil {
		return
	}
	result := "denied"
	if allowed {
		result = "allowed"
	}
	p.RateDecisions.WithLabelValues(result).Inc()
}

package application

import (
	"context"
	"time"

	"api-guard/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store domain.WindowStore
	// MinRetryAfter é o piso do Retry-After (padrão 1s).
	MinRetryAfter time.Duration
}

// Decide consulta o store. Se o store falhar (ex.: Redis fora), o request é
// admitido e o erro devolvido para ser logado: o limiter não derruba a API.
func (s Service) Decide(ctx context.Context, key domain.Key, now time.Time) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if s.MinRetryAfter <= 0 {
		s.MinRetryAfter = 1 * time.Second
	}

	adm, err := s.Store.Admit(ctx, key, now)
	if err != nil {
		return domain.Decision{Allowed: true}, err
	}
	if adm.Allowed {
		return domain.Decision{Allowed: true, Remaining: adm.Remaining}, nil
	}

	retry := adm.ResetIn
	if retry < s.MinRetryAfter {
		retry = s.MinRetryAfter
	}
	return domain.Decision{Allowed: false, RetryAfter: retry}, nil
}

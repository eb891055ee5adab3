package domain

import (
	"context"
	"errors"
	"time"
)

// StatsEvent é uma decisão do limiter já tomada, pronta para contabilizar.
//
// Method/Path vêm do request mas não carregam nada além disso (nem query,
// nem headers). Cuidado com a cardinalidade de Key/Path em Redis ou Prometheus.
type StatsEvent struct {
	Key       Key
	Allowed   bool
	Remaining int

	Method string
	Path   string

	At time.Time
}

// StatsStore contabiliza decisões. Erros são best-effort: o middleware
// apenas loga e segue o request.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// MultiStats repassa o evento para vários stores (ex.: memória + Prometheus).
type MultiStats []StatsStore

func (m MultiStats) Record(ctx context.Context, ev StatsEvent) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

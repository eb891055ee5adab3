// Package transport reúne proteções da camada de transporte que ficam fora
// do pipeline de filtros (antes dele, no binário gateway).
package transport

import (
	"context"
	"net/http"
	"time"

	"api-guard/middleware/httperr"

	"go.uber.org/zap"
)

// Slots é um semáforo baseado em channel.
type Slots struct {
	sem chan struct{}
}

func NewSlots(max int) *Slots {
	return &Slots{sem: make(chan struct{}, max)}
}

// Acquire bloqueia até conseguir uma vaga ou o ctx encerrar.
// Ao conseguir, devolve release, que deve ser chamado exatamente uma vez.
func (s *Slots) Acquire(ctx context.Context) (func(), bool) {
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}

func (s *Slots) InUse() int { return len(s.sem) }

type ConcurrencyOptions struct {
	Max int
	// AcquireTimeout <= 0 espera até o request ser cancelado.
	AcquireTimeout time.Duration
	Logger         *zap.Logger
}

// ConcurrencyMiddleware limita requests simultâneos; sem vaga a tempo, 503.
// Com Max <= 0 é um no-op.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	slots := NewSlots(opts.Max)
	log := opts.Logger.Named("transport")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if opts.AcquireTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.AcquireTimeout)
				defer cancel()
			}

			release, ok := slots.Acquire(ctx)
			if !ok {
				log.Warn("no concurrency slot available", zap.Int("max", opts.Max))
				httperr.Write(w, http.StatusServiceUnavailable, httperr.MsgUnavailable)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

package infra

import (
	"context"
	"time"
)

// runJanitor chama sweep a cada intervalo até o ctx encerrar.
func runJanitor(ctx context.Context, every time.Duration, sweep func(now time.Time)) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				sweep(now)
			}
		}
	}()
}

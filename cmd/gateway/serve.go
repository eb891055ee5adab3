package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"api-guard/bootstrap"
	"api-guard/config"
	"api-guard/middleware/transport"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type serveCmd struct{}

func (s *serveCmd) Run(cfg *config.Config, log *zap.Logger) error {
	if cfg.UpstreamURL == "" {
		return errors.New("UPSTREAM_URL is required")
	}
	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return fmt.Errorf("invalid UPSTREAM_URL: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	p, err := bootstrap.Build(ctx, *cfg, log, reg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newHandler(*cfg, p, newProxy(target, log), reg, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	log.Info("gateway listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("upstream", target.String()),
		zap.Int("concurrency_max", cfg.ConcurrencyMax),
		zap.Duration("concurrency_timeout", cfg.ConcurrencyTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newHandler: /metrics fica fora da chain; o resto passa por
// concorrência -> chain -> identidade -> upstream.
func newHandler(cfg config.Config, p *bootstrap.Pipeline, upstream http.Handler, gatherer prometheus.Gatherer, log *zap.Logger) http.Handler {
	guarded := p.Chain.Then(forwardIdentity(upstream))
	guarded = transport.ConcurrencyMiddleware(transport.ConcurrencyOptions{
		Max:            cfg.ConcurrencyMax,
		AcquireTimeout: cfg.ConcurrencyTimeout,
		Logger:         log,
	})(guarded)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/", guarded)
	return mux
}

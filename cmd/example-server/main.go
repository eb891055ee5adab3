package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"api-guard/bootstrap"
	"api-guard/config"
	"api-guard/logging"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Exemplo: a chain injetada direto no router da aplicação (sem proxy).
	if err := config.LoadDotEnv(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	var cfg config.Config
	kctx := kong.Parse(&cfg, kong.Name("example-server"))

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	p, err := bootstrap.Build(ctx, cfg, log, reg)
	if err != nil {
		log.Error("bootstrap failed", zap.Error(err))
		kctx.Exit(1)
		return
	}
	defer func() { _ = p.Close() }()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(p, reg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("example server listening", zap.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", zap.Error(err))
		kctx.Exit(1)
	}
}

// Package chain monta o pipeline de filtros na ordem fixa:
//
//	triagem de injeção -> rate limit -> autenticação -> handler
//
// A triagem é a mais barata e barra tráfego claramente malicioso antes de
// gastar cota ou HMAC; o rate limit vem antes da autenticação para que um
// flood anônimo não force verificação de assinatura a cada request; a
// autenticação fica por último para que a identidade chegue ao handler.
// Qualquer estágio pode encerrar o request; os seguintes não rodam.
package chain

import (
	"errors"
	"net/http"
	"time"

	"api-guard/middleware/auth"
	authdomain "api-guard/middleware/auth/domain"
	"api-guard/middleware/metrics"
	"api-guard/middleware/ratelimit"
	ratedomain "api-guard/middleware/ratelimit/domain"
	"api-guard/middleware/sqlguard"
	sqldomain "api-guard/middleware/sqlguard/domain"

	"go.uber.org/zap"
)

// Config recebe os componentes já construídos (nada de injeção global).
type Config struct {
	Tokens     authdomain.Verifier
	Limiter    ratedomain.WindowStore
	Signatures *sqldomain.SignatureSet

	Stats               ratedomain.StatsStore
	KeyHeader           string
	TrustXForwardedFor  bool
	AddRateLimitHeaders bool

	ScanBody  bool
	BodyLimit int64

	Logger  *zap.Logger
	Metrics *metrics.Pipeline
	Now     func() time.Time
}

type Chain struct {
	injection func(http.Handler) http.Handler
	rate      func(http.Handler) http.Handler
	authn     func(http.Handler) http.Handler
}

func New(cfg Config) (*Chain, error) {
	if cfg.Tokens == nil {
		return nil, errors.New("chain: token verifier is required")
	}
	if cfg.Limiter == nil {
		return nil, errors.New("chain: rate limiter store is required")
	}
	if cfg.Signatures == nil {
		cfg.Signatures = sqldomain.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Chain{
		injection: sqlguard.Middleware(sqlguard.Options{
			Signatures: cfg.Signatures,
			ScanBody:   cfg.ScanBody,
			BodyLimit:  cfg.BodyLimit,
			Logger:     cfg.Logger,
			Metrics:    cfg.Metrics,
		}),
		rate: ratelimit.Middleware(ratelimit.Options{
			Store:               cfg.Limiter,
			Stats:               cfg.Stats,
			KeyHeader:           cfg.KeyHeader,
			TrustXForwardedFor:  cfg.TrustXForwardedFor,
			AddRateLimitHeaders: cfg.AddRateLimitHeaders,
			Logger:              cfg.Logger,
			Metrics:             cfg.Metrics,
			Now:                 cfg.Now,
		}),
		authn: auth.Middleware(auth.Options{
			Verifier: cfg.Tokens,
			Logger:   cfg.Logger,
			Metrics:  cfg.Metrics,
			Now:      cfg.Now,
		}),
	}, nil
}

// Then envolve o handler de negócio. A ordem é aplicada de dentro para fora.
func (c *Chain) Then(h http.Handler) http.Handler {
	h = c.authn(h)
	h = c.rate(h)
	h = c.injection(h)
	return h
}

// Middleware permite usar a chain como middleware de routers (ex.: chi).
func (c *Chain) Middleware(next http.Handler) http.Handler { return c.Then(next) }

package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"api-guard/middleware/httperr"
	"api-guard/middleware/metrics"
	"api-guard/middleware/ratelimit/application"
	"api-guard/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Store               domain.WindowStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	MinRetryAfter       time.Duration
	AddRateLimitHeaders bool

	Logger  *zap.Logger
	Metrics *metrics.Pipeline
	Now     func() time.Time
}

type policyInfo interface {
	Policy() domain.Policy
}

// DefaultKeyFunc usa o endereço remoto do cliente. Header e X-Forwarded-For
// só são considerados quando configurados (atrás de um proxy confiável).
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// primeiro IP do X-Forwarded-For é o cliente original
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger.Named("ratelimit")

	svc := application.Service{
		Store:         opts.Store,
		MinRetryAfter: opts.MinRetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			now := opts.Now()

			dec, err := svc.Decide(r.Context(), domain.Key(key), now)
			if err != nil {
				log.Warn("rate limit store unavailable, admitting request", zap.Error(err))
			}

			if opts.AddRateLimitHeaders {
				if pi, ok := opts.Store.(policyInfo); ok {
					w.Header().Set("X-RateLimit-Limit", formatInt(pi.Policy().MaxRequests))
				}
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
			}

			if opts.Stats != nil && err == nil {
				if err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:       domain.Key(key),
					Allowed:   dec.Allowed,
					Remaining: dec.Remaining,
					Method:    r.Method,
					Path:      r.URL.Path,
					At:        now,
				}); err != nil {
					log.Debug("rate limit stats not recorded", zap.Error(err))
				}
			}

			if !dec.Allowed {
				opts.Metrics.Rejected(metrics.StageRateLimit)
				log.Info("too many requests",
					zap.String("client", key),
					zap.Duration("retry_after", dec.RetryAfter),
				)
				w.Header().Set("Retry-After", formatSeconds(dec.RetryAfter))
				httperr.Write(w, http.StatusTooManyRequests, httperr.MsgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package auth

import (
	"context"
	"net/http"
	"time"

	"api-guard/middleware/auth/application"
	"api-guard/middleware/auth/domain"
	"api-guard/middleware/httperr"
	"api-guard/middleware/metrics"

	"go.uber.org/zap"
)

type ctxKey struct{}

type Options struct {
	Verifier domain.Verifier
	Logger   *zap.Logger
	Metrics  *metrics.Pipeline
	Now      func() time.Time
}

// IdentityFromContext é a única coisa que o pipeline expõe para baixo.
func IdentityFromContext(ctx context.Context) (domain.Claim, bool) {
	c, ok := ctx.Value(ctxKey{}).(domain.Claim)
	return c, ok
}

func withIdentity(ctx context.Context, c domain.Claim) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	authn := application.Authenticator{Verifier: opts.Verifier}
	log := opts.Logger.Named("auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := authn.Authenticate(r.Header.Get("Authorization"), opts.Now())
			opts.Metrics.AuthOutcome(string(res.Outcome))

			if !res.Present {
				if res.Outcome != application.OutcomeAnonymous {
					// nunca logar o token, só o motivo.
					log.Debug("bearer token rejected, continuing as anonymous",
						zap.String("outcome", string(res.Outcome)),
						zap.String("remote_addr", r.RemoteAddr),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), res.Claim)))
		})
	}
}

// RequireRole é um helper para handlers downstream: 401 sem identidade,
// 403 se o papel não estiver na lista. Sem papéis, basta estar autenticado.
func RequireRole(roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := IdentityFromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				httperr.Write(w, http.StatusUnauthorized, httperr.MsgUnauthorized)
				return
			}
			if len(roles) > 0 && !hasRole(c.Role, roles) {
				httperr.Write(w, http.StatusForbidden, httperr.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(r domain.Role, allowed []domain.Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"api-guard/middleware/auth/domain"
	"api-guard/middleware/auth/infra"
	"api-guard/middleware/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func newTokens(t *testing.T) *infra.HMACTokenService {
	t.Helper()
	svc, err := infra.NewHMACTokenService(secret, time.Hour)
	require.NoError(t, err)
	return svc
}

// captura a identidade vista pelo handler.
func capture(got *domain.Claim, present *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *present = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_AttachesIdentity(t *testing.T) {
	tokens := newTokens(t)
	now := time.Now()
	tok, err := tokens.Generate("alice@example.com", domain.RoleAdmin, now)
	require.NoError(t, err)

	var got domain.Claim
	var present bool
	h := Middleware(Options{Verifier: tokens, Now: func() time.Time { return now }})(capture(&got, &present))

	r := httptest.NewRequest(http.MethodGet, "http://example/me", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, present)
	assert.Equal(t, "alice@example.com", got.Subject)
	assert.Equal(t, domain.RoleAdmin, got.Role)
}

func TestMiddleware_NeverRejects(t *testing.T) {
	tokens := newTokens(t)

	for _, header := range []string{"", "Basic Zm9vOmJhcg==", "Bearer garbage", "Bearer a.b.c"} {
		var got domain.Claim
		var present bool
		h := Middleware(Options{Verifier: tokens})(capture(&got, &present))

		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.False(t, present, header)
	}
}

func TestMiddleware_ExpiredTokenIsAnonymousAndNotLogged(t *testing.T) {
	tokens := newTokens(t)
	issued := time.Now().Add(-2 * time.Hour)
	tok, err := tokens.Generate("bob@example.com", domain.RoleUser, issued)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	reg := prometheus.NewRegistry()
	m := metrics.NewPipeline(reg)

	var got domain.Claim
	var present bool
	h := Middleware(Options{Verifier: tokens, Logger: zap.New(core), Metrics: m})(capture(&got, &present))

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.False(t, present)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthOutcomes.WithLabelValues("expired")))

	require.Equal(t, 1, logs.Len())
	for _, e := range logs.All() {
		assert.NotContains(t, e.Message, tok)
		for _, f := range e.Context {
			assert.False(t, strings.Contains(f.String, tok), "token leaked in field %s", f.Key)
		}
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireRole(domain.RoleAdmin)(ok)

	// anônimo
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	// papel errado
	r := httptest.NewRequest(http.MethodGet, "http://example/admin", nil)
	r = r.WithContext(withIdentity(r.Context(), domain.Claim{Subject: "u", Role: domain.RoleUser}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// papel certo
	r = httptest.NewRequest(http.MethodGet, "http://example/admin", nil)
	r = r.WithContext(withIdentity(r.Context(), domain.Claim{Subject: "a", Role: domain.RoleAdmin}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRole_AnyAuthenticated(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireRole()(ok)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r = r.WithContext(withIdentity(r.Context(), domain.Claim{Subject: "u", Role: domain.RoleUser}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"api-guard/config"
	authdomain "api-guard/middleware/auth/domain"
	rateinfra "api-guard/middleware/ratelimit/infra"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func baseConfig() config.Config {
	return config.Config{
		SigningSecret:    "0123456789abcdef0123456789abcdef",
		TokenTTL:         time.Hour,
		RateMaxRequests:  2,
		RateWindow:       time.Minute,
		RateBackend:      "memory",
		RateIdleTTL:      15 * time.Minute,
		RateCleanupEvery: time.Minute,
		RateStats:        "none",
	}
}

func serve(t *testing.T, p *Pipeline) int {
	t.Helper()
	h := p.Chain.Then(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.1.1:4000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w.Code
}

func TestBuild_MemoryBackend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, err := Build(ctx, baseConfig(), zaptest.NewLogger(t), prometheus.NewRegistry())
	require.NoError(t, err)
	defer p.Close()

	assert.IsType(t, &rateinfra.WindowStore{}, p.Limiter)
	assert.Equal(t, []int{204, 204, 429}, []int{serve(t, p), serve(t, p), serve(t, p)})
}

func TestBuild_BucketBackend(t *testing.T) {
	cfg := baseConfig()
	cfg.RateBackend = "bucket"

	p, err := Build(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &rateinfra.BucketStore{}, p.Limiter)
}

func TestBuild_RedisBackendAndStats(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RateBackend = "redis"
	cfg.RateStats = "redis"
	cfg.RateStatsPrefix = "stats"
	cfg.RateStatsTTL = time.Hour
	cfg.RedisAddr = mr.Addr()

	p, err := Build(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.IsType(t, &rateinfra.RedisWindowStore{}, p.Limiter)
	assert.IsType(t, &rateinfra.RedisStatsStore{}, p.Stats)
	assert.Equal(t, 204, serve(t, p))
	assert.NotEmpty(t, mr.Keys())
}

func TestBuild_RedisUnreachable(t *testing.T) {
	cfg := baseConfig()
	cfg.RateBackend = "redis"
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := Build(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}

func TestBuild_ShortSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.SigningSecret = "too-short"

	_, err := Build(context.Background(), cfg, nil, nil)
	assert.ErrorIs(t, err, authdomain.ErrSecretTooShort)
}

func TestBuild_PrometheusStatsNeedsRegistry(t *testing.T) {
	cfg := baseConfig()
	cfg.RateStats = "prometheus"

	_, err := Build(context.Background(), cfg, nil, nil)
	assert.Error(t, err)

	p, err := Build(context.Background(), cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.IsType(t, &rateinfra.PrometheusStatsStore{}, p.Stats)
}

func TestTokens_RoundTrip(t *testing.T) {
	svc, err := Tokens(baseConfig())
	require.NoError(t, err)

	now := time.Now()
	tok, err := svc.Generate("alice", authdomain.RoleUser, now)
	require.NoError(t, err)
	c, err := svc.Verify(tok, now)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Subject)
}

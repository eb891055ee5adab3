package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	authdomain "api-guard/middleware/auth/domain"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodSecret = "0123456789abcdef0123456789abcdef"

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	var cfg Config
	p, err := kong.New(&cfg, kong.Name("test"))
	require.NoError(t, err)
	_, err = p.Parse(args)
	require.NoError(t, err)
	return cfg
}

func TestConfig_Defaults(t *testing.T) {
	cfg := parse(t)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 60, cfg.RateMaxRequests)
	assert.Equal(t, 60*time.Second, cfg.RateWindow)
	assert.Equal(t, "memory", cfg.RateBackend)
	assert.Equal(t, "prometheus", cfg.RateStats)
	assert.EqualValues(t, 4096, cfg.ScanBodyLimit)
}

func TestConfig_FromEnv(t *testing.T) {
	t.Setenv("SIGNING_SECRET", goodSecret)
	t.Setenv("RATE_MAX_REQUESTS", "3")
	t.Setenv("RATE_WINDOW", "10s")
	t.Setenv("TRUST_XFF", "true")

	cfg := parse(t)

	assert.Equal(t, goodSecret, cfg.SigningSecret)
	assert.Equal(t, 3, cfg.RateMaxRequests)
	assert.Equal(t, 10*time.Second, cfg.RateWindow)
	assert.True(t, cfg.TrustXFF)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("RATE_MAX_REQUESTS", "3")
	cfg := parse(t, "--max-requests-per-window=7")
	assert.Equal(t, 7, cfg.RateMaxRequests)
}

func TestConfig_ShortSecretIsFatal(t *testing.T) {
	cfg := parse(t, "--signing-secret=short")
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, authdomain.ErrSecretTooShort)
}

func TestConfig_SubSecondTokenTTLRejected(t *testing.T) {
	cfg := parse(t, "--signing-secret="+goodSecret, "--token-ttl=500ms")
	assert.Error(t, cfg.Validate())

	cfg = parse(t, "--signing-secret="+goodSecret, "--token-ttl=1s")
	assert.NoError(t, cfg.Validate())
}

func TestConfig_RedisRequiresAddr(t *testing.T) {
	cfg := parse(t, "--signing-secret="+goodSecret, "--rate-backend=redis")
	assert.Error(t, cfg.Validate())

	cfg.RedisAddr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_RejectsUnknownBackend(t *testing.T) {
	var cfg Config
	p, err := kong.New(&cfg)
	require.NoError(t, err)
	_, err = p.Parse([]string{"--rate-backend=sqlite"})
	assert.Error(t, err)
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("APIGUARD_TEST_A=from-file\nAPIGUARD_TEST_B=from-file\n"), 0o600))

	t.Setenv("APIGUARD_TEST_A", "from-env")
	t.Setenv("APIGUARD_TEST_B", "")
	require.NoError(t, os.Unsetenv("APIGUARD_TEST_B"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "from-env", os.Getenv("APIGUARD_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("APIGUARD_TEST_B"))
}

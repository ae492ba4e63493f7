package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-ticket-client/internal/config"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o600))
	return p
}

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("API_URL", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("TOKEN_EXPIRY_MARGIN", "")
	t.Setenv("DEFAULT_RENEW_DAYS", "")

	c := config.New()
	require.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
	require.Equal(t, config.StoreBackendFile, c.GetStoreBackend())
	require.Equal(t, 30*time.Second, c.GetTokenExpiryMargin())
	require.Equal(t, 15, c.GetDefaultRenewDays())
	require.Equal(t, "DEV", c.GetEnv())
}

func TestConfig_Load(t *testing.T) {
	path := writeFile(t, "ticketctl.yaml", `
api_url: https://tickets.example.com/
store_backend: redis
redis_db: 2
token_expiry_margin: 45s
default_renew_days: 30
`)

	t.Run("file values", func(t *testing.T) {
		t.Setenv("API_URL", "")
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "https://tickets.example.com", c.GetAPIBaseURL())
		require.Equal(t, config.StoreBackendRedis, c.GetStoreBackend())
		require.Equal(t, 2, c.GetRedisDB())
		require.Equal(t, 45*time.Second, c.GetTokenExpiryMargin())
		require.Equal(t, 30, c.GetDefaultRenewDays())
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("API_URL", "http://env.example.com")
		t.Setenv("TOKEN_EXPIRY_MARGIN", "10")
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "http://env.example.com", c.GetAPIBaseURL())
		require.Equal(t, 10*time.Second, c.GetTokenExpiryMargin())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("unknown backend falls back to file", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "etcd")
		c, err := config.Load("")
		require.NoError(t, err)
		require.Equal(t, config.StoreBackendFile, c.GetStoreBackend())
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "TICKETCTL_TEST_DOTENV=from-dotenv\n")
	t.Setenv("TICKETCTL_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("TICKETCTL_TEST_DOTENV"))

	require.NoError(t, config.LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	require.Equal(t, "from-dotenv", os.Getenv("TICKETCTL_TEST_DOTENV"))
}

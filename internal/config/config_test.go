package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/internal/config"
)

const secret = "0123456789abcdef0123456789abcdef"

// Tests below use t.Setenv and t.Chdir, so they cannot run in parallel.

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CARTKEEP_DB_URL", "postgres://localhost/cart")
	t.Setenv("CARTKEEP_COOKIE_SECRET", secret)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "cart_session", cfg.Cookie.Name)
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, 47*time.Hour, cfg.Session.NativeExpiring)
	assert.Equal(t, 48*time.Hour, cfg.Session.NativeExpiration)
	assert.Equal(t, 6*24*time.Hour, cfg.Session.APIExpiring)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.APIExpiration)
	assert.Equal(t, "0 * * * *", cfg.Sweep.Schedule)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CARTKEEP_DB_DRIVER", "SQLite")
	t.Setenv("CARTKEEP_DB_URL", "carts.db")
	t.Setenv("CARTKEEP_COOKIE_SECRET", secret)
	t.Setenv("CARTKEEP_SESSION_NATIVE_EXPIRING", "1h")
	t.Setenv("CARTKEEP_SESSION_NATIVE_EXPIRATION", "2h")
	t.Setenv("CARTKEEP_COOKIE_SECURE", "false")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "carts.db", cfg.DB.URL)
	assert.Equal(t, time.Hour, cfg.Session.NativeExpiring)
	assert.Equal(t, 2*time.Hour, cfg.Session.NativeExpiration)
	assert.False(t, cfg.Cookie.Secure)
}

func TestLoad_DotEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("CARTKEEP_COOKIE_SECRET="+secret+"\n"), 0o600))
	file := filepath.Join(dir, "cartkeep.yaml")
	require.NoError(t, os.WriteFile(file,
		[]byte("db:\n  driver: sqlite\n  url: file.db\nhttp:\n  addr: \":9090\"\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CARTKEEP_COOKIE_SECRET") })

	cfg, err := config.Load(file)
	require.NoError(t, err)

	assert.Equal(t, secret, cfg.Cookie.Secret)
	assert.Equal(t, "file.db", cfg.DB.URL)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, config.ErrLoad)
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			DB:     config.DB{Driver: config.DriverSQLite, URL: ":memory:"},
			Cookie: config.Cookie{Secret: secret},
			Redis:  config.Redis{Prefix: "cart"},
			Session: config.Session{
				NativeExpiring:   time.Hour,
				NativeExpiration: 2 * time.Hour,
				APIExpiring:      time.Hour,
				APIExpiration:    2 * time.Hour,
			},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.DB.Driver = "mysql"
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidDriver)

	cfg = valid()
	cfg.DB.URL = ""
	require.ErrorIs(t, cfg.Validate(), config.ErrMissingDBURL)

	cfg = valid()
	cfg.Cookie.Secret = "short"
	require.ErrorIs(t, cfg.Validate(), config.ErrWeakSecret)

	cfg = valid()
	cfg.Redis.URL = "redis://localhost:6379/0"
	require.NoError(t, cfg.Validate())
	cfg.Redis.Prefix = ""
	require.ErrorIs(t, cfg.Validate(), config.ErrNoRedisPrefix)

	cfg = valid()
	cfg.Session.APIExpiring = 3 * time.Hour
	require.ErrorIs(t, cfg.Validate(), config.ErrBadLifetime)
}

// Package config loads cartkeep settings from defaults, an optional config
// file, a .env file and the environment, in increasing priority.
//
// Environment variables use the CARTKEEP_ prefix and underscores for
// nesting: db.url is CARTKEEP_DB_URL.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const envPrefix = "CARTKEEP"

// Errors.
var (
	ErrLoad          = errors.New("config: load failed")
	ErrInvalidDriver = errors.New("config: db.driver must be postgres or sqlite")
	ErrMissingDBURL  = errors.New("config: db.url is required")
	ErrWeakSecret    = errors.New("config: cookie.secret must be at least 32 bytes")
	ErrBadLifetime   = errors.New("config: expiring must be shorter than expiration")
	ErrNoRedisPrefix = errors.New("config: redis.prefix is required when redis.url is set")
)

type Config struct {
	HTTP    HTTP    `mapstructure:"http"`
	DB      DB      `mapstructure:"db"`
	Redis   Redis   `mapstructure:"redis"`
	Cookie  Cookie  `mapstructure:"cookie"`
	Session Session `mapstructure:"session"`
	Log     Log     `mapstructure:"log"`
	Sentry  Sentry  `mapstructure:"sentry"`
	Sweep   Sweep   `mapstructure:"sweep"`
}

type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	APIPrefix       string        `mapstructure:"api_prefix"`
}

type DB struct {
	Driver string `mapstructure:"driver"`
	// URL is a postgres:// URL or a SQLite file path.
	URL          string `mapstructure:"url"`
	MaxOpenConns int32  `mapstructure:"max_open_conns"`
}

// Redis is optional; without a URL carts are cached in process memory.
type Redis struct {
	URL      string `mapstructure:"url"`
	Prefix   string `mapstructure:"prefix"`
	PoolSize int    `mapstructure:"pool_size"`
}

type Cookie struct {
	Name   string `mapstructure:"name"`
	Secret string `mapstructure:"secret"`
	Domain string `mapstructure:"domain"`
	Secure bool   `mapstructure:"secure"`
}

type Session struct {
	NativeExpiring   time.Duration `mapstructure:"native_expiring"`
	NativeExpiration time.Duration `mapstructure:"native_expiration"`
	APIExpiring      time.Duration `mapstructure:"api_expiring"`
	APIExpiration    time.Duration `mapstructure:"api_expiration"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Sentry struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type Sweep struct {
	Schedule string `mapstructure:"schedule"`
	Enabled  bool   `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.api_prefix", "/api/")

	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.url", "")
	v.SetDefault("db.max_open_conns", 10)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.prefix", "cart")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("cookie.name", "cart_session")
	v.SetDefault("cookie.secret", "")
	v.SetDefault("cookie.domain", "")
	v.SetDefault("cookie.secure", true)

	v.SetDefault("session.native_expiring", 47*time.Hour)
	v.SetDefault("session.native_expiration", 48*time.Hour)
	v.SetDefault("session.api_expiring", 6*24*time.Hour)
	v.SetDefault("session.api_expiration", 7*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")

	v.SetDefault("sweep.schedule", "0 * * * *")
	v.SetDefault("sweep.enabled", true)
}

// Load reads the configuration. file may be empty; a missing .env file is
// not an error.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Join(ErrLoad, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Join(ErrLoad, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Join(ErrLoad, err)
	}
	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
		if c.DB.URL == "" {
			errs = append(errs, ErrMissingDBURL)
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDriver, c.DB.Driver))
	}

	// The sweep clears the cache by prefix; an empty one flushes the database.
	if c.Redis.URL != "" && strings.TrimSpace(c.Redis.Prefix) == "" {
		errs = append(errs, ErrNoRedisPrefix)
	}

	if len(c.Cookie.Secret) < 32 {
		errs = append(errs, ErrWeakSecret)
	}
	if c.Session.NativeExpiring >= c.Session.NativeExpiration {
		errs = append(errs, fmt.Errorf("%w: native", ErrBadLifetime))
	}
	if c.Session.APIExpiring >= c.Session.APIExpiration {
		errs = append(errs, fmt.Errorf("%w: api", ErrBadLifetime))
	}

	return errors.Join(errs...)
}

package session

import (
	"log/slog"
	"time"
)

// Default lifetimes.
const (
	DefaultNativeExpiring   = 47 * time.Hour
	DefaultNativeExpiration = 48 * time.Hour
	DefaultAPIExpiring      = 6 * 24 * time.Hour
	DefaultAPIExpiration    = 7 * 24 * time.Hour
)

// Config holds session lifetimes.
//
// A session is refreshed once it passes its expiring point; it is gone once
// it passes its expiration. Expiring must be shorter than Expiration.
type Config struct {
	NativeExpiring   time.Duration
	NativeExpiration time.Duration
	APIExpiring      time.Duration
	APIExpiration    time.Duration
}

// DefaultConfig returns the default lifetimes.
func DefaultConfig() Config {
	return Config{
		NativeExpiring:   DefaultNativeExpiring,
		NativeExpiration: DefaultNativeExpiration,
		APIExpiring:      DefaultAPIExpiring,
		APIExpiration:    DefaultAPIExpiration,
	}
}

// Option configures the engines.
type Option func(*options)

type options struct {
	log *slog.Logger
	cfg Config
}

// WithConfig replaces all lifetimes. Zero or inconsistent values fall back
// to the defaults for that flow.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithNativeLifetime sets the cookie flow expiring and expiration windows.
func WithNativeLifetime(expiring, expiration time.Duration) Option {
	return func(o *options) {
		o.cfg.NativeExpiring = expiring
		o.cfg.NativeExpiration = expiration
	}
}

// WithAPILifetime sets the API flow expiring and expiration windows.
func WithAPILifetime(expiring, expiration time.Duration) Option {
	return func(o *options) {
		o.cfg.APIExpiring = expiring
		o.cfg.APIExpiration = expiration
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func (c Config) normalized() Config {
	if c.NativeExpiration <= 0 || c.NativeExpiring <= 0 || c.NativeExpiring >= c.NativeExpiration {
		c.NativeExpiring, c.NativeExpiration = DefaultNativeExpiring, DefaultNativeExpiration
	}
	if c.APIExpiration <= 0 || c.APIExpiring <= 0 || c.APIExpiring >= c.APIExpiration {
		c.APIExpiring, c.APIExpiration = DefaultAPIExpiring, DefaultAPIExpiration
	}
	return c
}

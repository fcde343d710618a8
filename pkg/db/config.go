package db

import "time"

// Config holds PostgreSQL connection parameters.
type Config struct {
	ConnectionString string

	// Probe interval for idle pooled connections.
	HealthCheckPeriod time.Duration

	// Recycle connections so poolers like PgBouncer never hold stale ones.
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration

	// Startup retry: attempt N waits N*RetryInterval.
	RetryAttempts int
	RetryInterval time.Duration

	MaxOpenConns int32
	MinConns     int32
}

// DefaultConfig returns a Config with production defaults for the given URL.
func DefaultConfig(url string) Config {
	return Config{
		ConnectionString:  url,
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   10 * time.Minute,
		MaxConnLifetime:   30 * time.Minute,
		RetryAttempts:     3,
		RetryInterval:     5 * time.Second,
		MaxOpenConns:      10,
		MinConns:          2,
	}
}

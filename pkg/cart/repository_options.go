package cart

import (
	"log/slog"
	"time"
)

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithClock overrides time.Now. Intended for tests.
func WithClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger for best-effort cache failures.
func WithLogger(l *slog.Logger) RepositoryOption {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// WithKeyGenerator overrides the generator used for fresh cart keys.
func WithKeyGenerator(fn func() string) RepositoryOption {
	return func(r *Repository) {
		if fn != nil {
			r.newKey = fn
		}
	}
}

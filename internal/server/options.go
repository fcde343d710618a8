package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cartkeep/pkg/health"
)

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAddress sets the listen address, ":0" for a random port.
func WithAddress(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.http.Addr = addr
		}
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.http.ReadTimeout = d
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.http.WriteTimeout = d
		}
	}
}

// WithShutdownTimeout bounds the whole shutdown sequence.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithShutdownHook runs fn after the HTTP server stopped. Hooks run in the
// order they were added.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(s *Server) {
		if fn != nil {
			s.shutdownHooks = append(s.shutdownHooks, fn)
		}
	}
}

// WithMiddleware applies mw to application routes. Health endpoints are
// not wrapped.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mw...)
	}
}

// WithRoutes mounts application routes.
func WithRoutes(fn func(chi.Router)) Option {
	return func(s *Server) {
		if fn != nil {
			s.routes = append(s.routes, fn)
		}
	}
}

// WithReadinessCheck adds a probe to /health/ready.
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return func(s *Server) {
		if name != "" && fn != nil {
			s.checks[name] = fn
		}
	}
}

// Package server runs the cartkeep HTTP server with health endpoints and
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cartkeep/pkg/health"
	"github.com/dmitrymomot/cartkeep/pkg/logger"
)

const (
	defaultAddress           = ":8080"
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 30 * time.Second

	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
)

// Server owns the router, the listener and the shutdown sequence.
// It is immutable after New.
type Server struct {
	logger          *slog.Logger
	http            *http.Server
	checks          health.Checks
	middlewares     []func(http.Handler) http.Handler
	routes          []func(chi.Router)
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
	stopOnce sync.Once
}

// New builds a Server. Routes are mounted in Run.
func New(opts ...Option) *Server {
	s := &Server{
		logger: logger.NewNope(),
		http: &http.Server{
			Addr:              defaultAddress,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			MaxHeaderBytes:    1 << 20,
		},
		checks:          health.Checks{},
		shutdownTimeout: defaultShutdownTimeout,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.http.ErrorLog = slog.NewLogLogger(s.logger.Handler(), slog.LevelError)
	return s
}

// Handler returns the fully wired router. Run calls it; tests may call it
// directly to serve through httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get(LivenessPath, health.LivenessHandler())
	r.Get(ReadinessPath, health.ReadinessHandler(s.checks, health.WithLogger(s.logger)))

	r.Group(func(r chi.Router) {
		r.Use(s.middlewares...)
		for _, mount := range s.routes {
			mount(r)
		}
	})
	return r
}

// Run serves until ctx is cancelled or Stop is called, then shuts down:
// HTTP first so in-flight requests still save their carts, then the hooks
// in registration order.
func (s *Server) Run(ctx context.Context) error {
	s.http.Handler = s.Handler()

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	case <-s.done:
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range s.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			s.logger.Error("shutdown hook failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("shutdown completed")
	return nil
}

// Stop triggers a graceful shutdown of Run.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Addr returns the bound address once Run is listening, "" before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

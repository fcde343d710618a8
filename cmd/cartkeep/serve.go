package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/cartkeep/internal/config"
	"github.com/dmitrymomot/cartkeep/internal/handler"
	"github.com/dmitrymomot/cartkeep/internal/server"
	"github.com/dmitrymomot/cartkeep/middlewares"
	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/cookie"
	"github.com/dmitrymomot/cartkeep/pkg/job"
	"github.com/dmitrymomot/cartkeep/pkg/logger"
	"github.com/dmitrymomot/cartkeep/pkg/session"
)

const sentryFlushTimeout = 2 * time.Second

func newServeCmd(e *env) *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e.cfg, e.log, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger, migrateFirst bool) error {
	d, err := openDeps(ctx, cfg, log)
	if err != nil {
		return err
	}

	if migrateFirst {
		if err := d.migrate(ctx); err != nil {
			_ = d.Close(ctx)
			return err
		}
	}

	codec, err := cookie.NewCodec(cfg.Cookie.Secret)
	if err != nil {
		_ = d.Close(ctx)
		return err
	}

	sessions := session.NewManager(d.repo, codec,
		session.WithConfig(session.Config{
			NativeExpiring:   cfg.Session.NativeExpiring,
			NativeExpiration: cfg.Session.NativeExpiration,
			APIExpiring:      cfg.Session.APIExpiring,
			APIExpiration:    cfg.Session.APIExpiration,
		}),
		session.WithLogger(log),
	)

	opts := []server.Option{
		server.WithLogger(log),
		server.WithAddress(cfg.HTTP.Addr),
		server.WithReadTimeout(cfg.HTTP.ReadTimeout),
		server.WithWriteTimeout(cfg.HTTP.WriteTimeout),
		server.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout),
		server.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(middlewares.WithRecoverLogger(log)),
			middlewares.CartSession(sessions,
				middlewares.WithAuthenticator(middlewares.HeaderAuthenticator{APIPrefix: cfg.HTTP.APIPrefix}),
				middlewares.WithCookieManager(cookie.New(
					cookie.WithDomain(cfg.Cookie.Domain),
					cookie.WithSecure(cfg.Cookie.Secure),
				)),
				middlewares.WithCookieName(cfg.Cookie.Name),
				middlewares.WithCartSessionLogger(log),
			),
		),
		server.WithRoutes(handler.NewSession(log).Routes),
	}
	for name, check := range d.checks {
		opts = append(opts, server.WithReadinessCheck(name, check))
	}

	if cfg.Sweep.Enabled {
		jobOpts, err := startSweep(ctx, cfg, log, d)
		if err != nil {
			_ = d.Close(ctx)
			return err
		}
		opts = append(opts, jobOpts...)
	}

	opts = append(opts,
		server.WithShutdownHook(d.Close),
		server.WithShutdownHook(logger.FlushSentry(sentryFlushTimeout)),
	)

	return server.New(opts...).Run(ctx)
}

// startSweep runs the cart sweep on River with PostgreSQL, on an
// in-process cron with SQLite. The returned options register its health
// check and stop it before storage is closed.
func startSweep(ctx context.Context, cfg *config.Config, log *slog.Logger, d *deps) ([]server.Option, error) {
	sweeper := cart.NewSweeper(d.repo,
		cart.WithSchedule(cfg.Sweep.Schedule),
		cart.WithSweepLogger(log),
	)
	jobOpts := []job.Option{job.WithScheduledTask(sweeper), job.WithLogger(log)}

	// Workers outlive the signal context; the shutdown hook stops them.
	runCtx := context.WithoutCancel(ctx)

	if d.pool != nil {
		m, err := job.NewManager(d.pool, jobOpts...)
		if err != nil {
			return nil, err
		}
		if err := m.Start(runCtx); err != nil {
			return nil, err
		}
		return []server.Option{
			server.WithReadinessCheck("jobs", job.Healthcheck(m)),
			server.WithShutdownHook(m.Shutdown()),
		}, nil
	}

	s, err := job.NewScheduler(jobOpts...)
	if err != nil {
		return nil, err
	}
	if err := s.Start(runCtx); err != nil {
		return nil, err
	}
	return []server.Option{
		server.WithReadinessCheck("jobs", job.SchedulerHealthcheck(s)),
		server.WithShutdownHook(s.Stop),
	}, nil
}

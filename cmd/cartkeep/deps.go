package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/cartkeep/internal/config"
	"github.com/dmitrymomot/cartkeep/pkg/cache"
	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/db"
	"github.com/dmitrymomot/cartkeep/pkg/health"
	"github.com/dmitrymomot/cartkeep/pkg/job"
	"github.com/dmitrymomot/cartkeep/pkg/redis"
)

const (
	migrationTable      = "cart_migrations"
	memoryCacheCapacity = 100_000
)

// deps are the storage resources shared by all commands.
type deps struct {
	log     *slog.Logger
	pool    *pgxpool.Pool // postgres driver only
	sqlite  *sql.DB       // sqlite driver only
	redis   goredis.UniversalClient
	repo    *cart.Repository
	checks  health.Checks
	closers []func(context.Context) error
}

func openDeps(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *deps, err error) {
	d := &deps{log: log, checks: health.Checks{}}
	defer func() {
		if err != nil {
			_ = d.Close(context.WithoutCancel(ctx))
		}
	}()

	var store cart.Store
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		dbCfg := db.DefaultConfig(cfg.DB.URL)
		if cfg.DB.MaxOpenConns > 0 {
			dbCfg.MaxOpenConns = cfg.DB.MaxOpenConns
		}
		d.pool, err = db.Connect(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, db.Shutdown(d.pool))
		d.checks["postgres"] = db.Healthcheck(d.pool)
		store = cart.NewPostgresStore(d.pool)

	case config.DriverSQLite:
		d.sqlite, err = db.OpenSQLite(ctx, cfg.DB.URL)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, db.ShutdownSQL(d.sqlite))
		d.checks["sqlite"] = db.SQLHealthcheck(d.sqlite)
		store = cart.NewSQLiteStore(d.sqlite)

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidDriver, cfg.DB.Driver)
	}

	var c cache.Cache[cart.Record]
	if cfg.Redis.URL != "" {
		d.redis, err = redis.Open(ctx, cfg.Redis.URL, redis.WithPoolSize(cfg.Redis.PoolSize))
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, redis.Shutdown(d.redis))
		d.checks["redis"] = redis.Healthcheck(d.redis)
		c = cache.NewRedis[cart.Record](d.redis, nil, cache.WithPrefix(cfg.Redis.Prefix))
	} else {
		mem := cache.NewMemory[cart.Record](cache.WithMaxEntries(memoryCacheCapacity))
		d.closers = append(d.closers, func(context.Context) error { return mem.Close() })
		c = mem
	}

	d.repo = cart.NewRepository(store, c, cart.WithLogger(log))
	return d, nil
}

// migrate applies the cart schema, plus River's tables on PostgreSQL.
func (d *deps) migrate(ctx context.Context) error {
	if d.pool != nil {
		if err := db.MigratePool(ctx, d.pool, cart.PostgresMigrations(), migrationTable, d.log); err != nil {
			return err
		}
		return job.Migrate(ctx, d.pool)
	}
	return db.Migrate(ctx, d.sqlite, db.DialectSQLite, cart.SQLiteMigrations(), migrationTable, d.log)
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range slices.Backward(d.closers) {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

// Package db opens and migrates the durable cart stores.
//
// # PostgreSQL
//
// PostgreSQL is reached through [github.com/jackc/pgx/v5/pgxpool].
// [Connect] parses the URL, applies the pool limits from [Config] and pings
// the server. Attempt N waits N*RetryInterval, so the service survives a
// database that starts after it:
//
//	pool, err := db.Connect(ctx, db.DefaultConfig(os.Getenv("CARTKEEP_DB_URL")))
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
// [DefaultConfig] recycles idle and old connections so poolers such as
// PgBouncer never hand back stale ones.
//
// # SQLite
//
// Single-node deployments can use SQLite via [OpenSQLite], backed by
// [github.com/mattn/go-sqlite3]. Files are opened in WAL mode with a busy
// timeout; ":memory:" databases are pinned to a single connection so every
// query sees the same data:
//
//	conn, err := db.OpenSQLite(ctx, "/var/lib/cartkeep/carts.db")
//
// # Migrations
//
// Schema changes are embedded SQL files applied with
// [github.com/pressly/goose/v3]. The cart package ships both dialects:
//
//	err := db.MigratePool(ctx, pool, cart.PostgresMigrations(), "cart_migrations", log)
//
//	err := db.Migrate(ctx, conn, db.DialectSQLite, cart.SQLiteMigrations(), "cart_migrations", log)
//
// goose keeps its dialect and table in package state, so concurrent
// migrations inside one process are serialized.
//
// # Transactions
//
// [WithTx] runs fn inside a transaction on anything that implements
// [TxBeginner] (a pool, a connection or another transaction). It commits
// when fn returns nil and rolls back on error or panic:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//	    _, err := tx.Exec(ctx, `DELETE FROM carts WHERE expires_at < $1`, now)
//	    return err
//	})
//
// # Health and Shutdown
//
// [Healthcheck] and [SQLHealthcheck] return readiness probes for
// pkg/health. [Shutdown] and [ShutdownSQL] return hooks for the server's
// shutdown sequence.
//
// # Errors
//
// Errors are wrapped with [errors.Join] around the package sentinels:
//
//   - [ErrFailedToParseDBConfig]
//   - [ErrFailedToOpenDBConnection]
//   - [ErrEmptySQLitePath]
//   - [ErrHealthcheckFailed]
//   - [ErrSetDialect]
//   - [ErrApplyMigrations]
package db

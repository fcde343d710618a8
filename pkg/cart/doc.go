// Package cart persists cart sessions.
//
// A [Record] is one cart: its key, owner, customer binding, opaque JSON
// payload and expiry. Records live in a durable [Store] ([PostgresStore],
// [SQLiteStore] or [MemoryStore]) behind a [Repository] that keeps a
// read-through cache in front of it:
//
//	store := cart.NewPostgresStore(pool)
//	c := cache.NewRedis[cart.Record](rdb, nil, cache.WithPrefix("cart"))
//	repo := cart.NewRepository(store, c, cart.WithLogger(log))
//
//	key, err := repo.Create(ctx, cart.Record{
//	    UserID:     42,
//	    CustomerID: 42,
//	    Value:      json.RawMessage(`{"cart":{"sku-1":2}}`),
//	    ExpiresAt:  time.Now().Add(48 * time.Hour),
//	    Source:     cart.SourceNative,
//	})
//
// Cached entries live until the record expires. Writes go to the store
// first and then update or invalidate the cache. [Repository.Delete] drops
// both together.
//
// A read that loads from the store while a concurrent write or delete of
// the same key completes drops its cache entry again, so a deleted or
// migrated cart is never brought back by a slow reader.
//
// [Repository.Read] returns expired records that the sweep has not removed
// yet, without caching them. The finders and [Repository.ExistsForUser]
// ignore expired records.
//
// The repository recomputes [Record.Hash] with [ContentHash] on every write.
//
// [Sweeper] deletes expired rows and clears the cache namespace. Register it
// with the job manager or run it from the CLI; it never runs per request.
//
// Schema migrations for goose are exposed by [PostgresMigrations] and
// [SQLiteMigrations].
package cart

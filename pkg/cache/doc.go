// Package cache holds the cart read cache: one generic interface with a
// process-local and a Redis implementation.
//
// Both implementations satisfy [Cache], so the service can run on the
// in-memory cache in development and on Redis in production without
// touching cart.Repository.
//
// # Interface
//
// [Cache] is generic over the value type V:
//
//   - Get(ctx, key) (V, error) returns the value or [ErrNotFound]
//   - Set(ctx, key, value, ttl) error stores a value
//   - Delete(ctx, key) error removes one key
//   - Has(ctx, key) (bool, error) checks existence
//   - Clear(ctx) error removes the whole namespace
//   - Close() error releases resources
//
// TTL semantics for Set:
//
//   - positive: the entry expires after ttl
//   - zero: the cache default TTL applies
//   - negative: the entry never expires
//
// Cart entries are always written with the time left until the cart
// expires, so a cached cart never outlives its durable row.
//
// # In-Memory Cache
//
// [Memory] is a mutex-guarded map with a janitor goroutine removing expired
// entries. With [WithMaxEntries] the entry closest to expiry is evicted
// first. [WithClock] lets tests drive expiry without sleeping:
//
//	carts := cache.NewMemory[cart.Record](
//	    cache.WithMaxEntries(100_000),
//	    cache.WithCleanupInterval(time.Minute),
//	)
//	defer carts.Close()
//
//	_ = carts.Set(ctx, rec.Key, rec, time.Until(rec.ExpiresAt))
//	rec, err := carts.Get(ctx, rec.Key)
//
// # Redis Cache
//
// [Redis] stores values through a [Marshaler], JSON when nil. It takes a
// [github.com/redis/go-redis/v9.UniversalClient], usually opened with
// pkg/redis:
//
//	client := redis.MustOpen(ctx, os.Getenv("CARTKEEP_REDIS_URL"))
//	carts := cache.NewRedis[cart.Record](client, nil,
//	    cache.WithPrefix("cart"),
//	    cache.WithRedisDefaultTTL(48*time.Hour),
//	)
//
// [WithPrefix] namespaces the keys. Clear removes that namespace only,
// batching SCAN results into UNLINK calls of [WithScanCount] keys. Without
// a prefix Clear flushes the selected database, so shared deployments must
// always set one.
//
// # Read-Through Loading
//
// [GetOrSet] collapses concurrent misses on one key into a single load
// with golang.org/x/sync/singleflight:
//
//	rec, err := cache.GetOrSet(ctx, carts, key, func(ctx context.Context) (cart.Record, time.Duration, error) {
//	    rec, err := store.Get(ctx, key)
//	    return rec, time.Until(rec.ExpiresAt), err
//	})
//
// Loads that return a non-positive TTL are handed back but not cached, so
// an expired cart read from the store never lands in the cache. A loader
// may also cache the value itself and return zero to skip the second write.
//
// # Errors
//
//   - [ErrNotFound]: the key does not exist or has expired
//   - [ErrClosed]: the cache was closed
//   - [ErrMarshal]: the value could not be encoded
//   - [ErrUnmarshal]: a stored value could not be decoded
//
// Check them with [errors.Is]:
//
//	if _, err := carts.Get(ctx, key); errors.Is(err, cache.ErrNotFound) {
//	    // load from the store
//	}
package cache

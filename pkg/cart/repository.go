package cart

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/cartkeep/pkg/cache"
	"github.com/dmitrymomot/cartkeep/pkg/id"
	"github.com/dmitrymomot/cartkeep/pkg/logger"
)

// Repository is the cache-backed access layer over a durable Store.
//
// Reads go to the cache first and fall back to the store. Writes go to the
// store first; the cache is then updated (or invalidated) in the same call.
// Cache failures are logged and never fail the operation.
//
// Every cache write or invalidation bumps a per-key generation. A read that
// loaded from the store drops its cache entry again when the generation
// moved during the load, so a concurrent Delete is never undone.
type Repository struct {
	store  Store
	cache  cache.Cache[Record]
	now    func() time.Time
	newKey func() string
	log    *slog.Logger
	gens   generations
}

const generationStripes = 256

// generations is a striped set of counters. Keys sharing a stripe only
// cost each other a cache entry.
type generations [generationStripes]atomic.Uint64

func (g *generations) slot(key string) *atomic.Uint64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &g[h.Sum32()%generationStripes]
}

func (g *generations) load(key string) uint64 { return g.slot(key).Load() }

func (g *generations) bump(key string) { g.slot(key).Add(1) }

// NewRepository creates a Repository over store and c.
func NewRepository(store Store, c cache.Cache[Record], opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:  store,
		cache:  c,
		now:    time.Now,
		newKey: id.NewCartKey,
		log:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewKey returns a fresh cart key.
func (r *Repository) NewKey() string {
	return r.newKey()
}

// Now returns the repository clock's current time.
func (r *Repository) Now() time.Time {
	return r.now()
}

// Create persists rec, replacing any record stored under the same key, and
// returns its key. An empty key is filled with a fresh one.
func (r *Repository) Create(ctx context.Context, rec Record) (string, error) {
	if rec.Key == "" {
		rec.Key = r.newKey()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	if !rec.ExpiresAt.After(rec.CreatedAt) {
		return "", ErrInvalidExpiry
	}
	if !rec.Source.Valid() {
		rec.Source = SourceNative
	}
	rec.Value = normalizeValue(rec.Value)
	rec.Hash = ContentHash(rec.Value)

	if err := r.store.Upsert(ctx, rec); err != nil {
		return "", err
	}

	// The store keeps the original creation time on conflict, so cache
	// what it actually holds.
	stored, err := r.store.Get(ctx, rec.Key)
	if err != nil {
		r.invalidate(ctx, rec.Key)
		return rec.Key, nil
	}
	r.writeThrough(ctx, stored)
	return rec.Key, nil
}

// Read returns the record for key, or ErrNotFound.
func (r *Repository) Read(ctx context.Context, key string) (Record, error) {
	if key == "" {
		return Record{}, ErrNotFound
	}

	// The loader caches the record itself and reports a zero TTL so
	// GetOrSet does not write it a second time.
	return cache.GetOrSet(ctx, r.cache, key, func(ctx context.Context) (Record, time.Duration, error) {
		gen := r.gens.load(key)
		rec, err := r.store.Get(ctx, key)
		if err != nil {
			return Record{}, 0, err
		}
		ttl := rec.TTL(r.now())
		if ttl <= 0 {
			return rec, 0, nil
		}
		if err := r.cache.Set(ctx, key, rec, ttl); err != nil {
			r.log.WarnContext(ctx, "cart cache write failed",
				slog.String("cart_key", key),
				slog.String("error", err.Error()),
			)
			return rec, 0, nil
		}
		if r.gens.load(key) != gen {
			r.dropCached(ctx, key)
		}
		return rec, 0, nil
	})
}

// Update replaces the payload and expiry of an existing record.
func (r *Repository) Update(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	value = normalizeValue(value)
	rec, err := r.store.UpdateValue(ctx, key, value, ContentHash(value), expiresAt)
	if err != nil {
		return err
	}
	r.writeThrough(ctx, rec)
	return nil
}

// UpdateExpiry moves the expiry of an existing record.
func (r *Repository) UpdateExpiry(ctx context.Context, key string, expiresAt time.Time) error {
	rec, err := r.store.UpdateExpiry(ctx, key, expiresAt)
	if err != nil {
		return err
	}
	r.writeThrough(ctx, rec)
	return nil
}

// UpdateCustomer rebinds an existing record to customerID.
func (r *Repository) UpdateCustomer(ctx context.Context, key string, customerID int64) error {
	rec, err := r.store.UpdateCustomer(ctx, key, customerID)
	if err != nil {
		return err
	}
	r.writeThrough(ctx, rec)
	return nil
}

// Delete removes the record from the store and the cache.
// Deleting an unknown key is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	err := r.store.Delete(ctx, key)
	r.invalidate(ctx, key)
	return err
}

// FindByUser returns the key of the user's own most recent cart.
func (r *Repository) FindByUser(ctx context.Context, userID int64) (string, error) {
	rec, err := r.store.FindByUser(ctx, userID, r.now())
	if err != nil {
		return "", err
	}
	return rec.Key, nil
}

// FindLatestByUser returns the key of the most recent cart the user owns,
// or a fresh key when there is none. It never returns an empty key.
func (r *Repository) FindLatestByUser(ctx context.Context, userID int64) string {
	rec, err := r.store.FindLatestByUser(ctx, userID, r.now())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.WarnContext(ctx, "cart lookup failed, issuing new key",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return r.newKey()
	}
	return rec.Key
}

// FindByUserAndCustomer returns the key of the cart userID manages for
// customerID.
func (r *Repository) FindByUserAndCustomer(ctx context.Context, userID, customerID int64) (string, error) {
	rec, err := r.store.FindByUserAndCustomer(ctx, userID, customerID, r.now())
	if err != nil {
		return "", err
	}
	return rec.Key, nil
}

// Exists reports whether a record is stored under key.
func (r *Repository) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.Read(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// ExistsForUser reports whether key names a live cart owned by userID.
// Expired records awaiting the sweep do not count.
func (r *Repository) ExistsForUser(ctx context.Context, key string, userID int64) (bool, error) {
	rec, err := r.Read(ctx, key)
	switch {
	case err == nil:
		return rec.UserID == userID && !rec.Expired(r.now()), nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// DeleteExpired removes every expired record and clears the cache namespace.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteExpired(ctx, r.now())
	if err != nil {
		return 0, err
	}
	if err := r.cache.Clear(ctx); err != nil {
		return n, err
	}
	return n, nil
}

func (r *Repository) writeThrough(ctx context.Context, rec Record) {
	r.gens.bump(rec.Key)
	ttl := rec.TTL(r.now())
	if ttl <= 0 {
		r.invalidate(ctx, rec.Key)
		return
	}
	if err := r.cache.Set(ctx, rec.Key, rec, ttl); err != nil {
		r.log.WarnContext(ctx, "cart cache write failed",
			slog.String("cart_key", rec.Key),
			slog.String("error", err.Error()),
		)
		r.invalidate(ctx, rec.Key)
	}
}

func (r *Repository) invalidate(ctx context.Context, key string) {
	r.gens.bump(key)
	r.dropCached(ctx, key)
}

func (r *Repository) dropCached(ctx context.Context, key string) {
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.WarnContext(ctx, "cart cache invalidation failed",
			slog.String("cart_key", key),
			slog.String("error", err.Error()),
		)
	}
}

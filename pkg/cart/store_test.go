package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
)

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) cart.Store) {
	t.Helper()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	rec := func(key string, user, customer int64, created time.Time, ttl time.Duration) cart.Record {
		return cart.Record{
			Key:        key,
			UserID:     user,
			CustomerID: customer,
			Value:      []byte(`{"cart":{}}`),
			Source:     cart.SourceNative,
			CreatedAt:  created,
			ExpiresAt:  created.Add(ttl),
		}
	}

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "nope")
		require.ErrorIs(t, err, cart.ErrNotFound)
	})

	t.Run("upsert keeps created_at", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Upsert(ctx, rec("k1", 1, 1, now, time.Hour)))

		updated := rec("k1", 1, 1, now.Add(time.Minute), 2*time.Hour)
		updated.Value = []byte(`{"cart":{"x":1}}`)
		require.NoError(t, s.Upsert(ctx, updated))

		got, err := s.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, got.CreatedAt.Equal(now))
		assert.True(t, got.ExpiresAt.Equal(now.Add(time.Minute+2*time.Hour)))
		assert.JSONEq(t, `{"cart":{"x":1}}`, string(got.Value))
	})

	t.Run("empty key", func(t *testing.T) {
		s := newStore(t)
		require.ErrorIs(t, s.Upsert(ctx, rec("", 1, 1, now, time.Hour)), cart.ErrEmptyKey)
	})

	t.Run("updates", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Upsert(ctx, rec("k1", 1, 1, now, time.Hour)))

		got, err := s.UpdateValue(ctx, "k1", []byte(`{"cart":{"y":2}}`), "h", now.Add(3*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "h", got.Hash)
		assert.True(t, got.ExpiresAt.Equal(now.Add(3*time.Hour)))

		got, err = s.UpdateExpiry(ctx, "k1", now.Add(4*time.Hour))
		require.NoError(t, err)
		assert.True(t, got.ExpiresAt.Equal(now.Add(4*time.Hour)))
		assert.JSONEq(t, `{"cart":{"y":2}}`, string(got.Value))

		got, err = s.UpdateCustomer(ctx, "k1", 9)
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.CustomerID)
		assert.Equal(t, int64(1), got.UserID)

		_, err = s.UpdateExpiry(ctx, "missing", now)
		require.ErrorIs(t, err, cart.ErrNotFound)
		_, err = s.UpdateCustomer(ctx, "missing", 1)
		require.ErrorIs(t, err, cart.ErrNotFound)
		_, err = s.UpdateValue(ctx, "missing", nil, "", now)
		require.ErrorIs(t, err, cart.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Upsert(ctx, rec("k1", 1, 1, now, time.Hour)))
		require.NoError(t, s.Delete(ctx, "k1"))
		require.NoError(t, s.Delete(ctx, "k1"))

		_, err := s.Get(ctx, "k1")
		require.ErrorIs(t, err, cart.ErrNotFound)
	})

	t.Run("finders", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Upsert(ctx, rec("own-old", 7, 7, now.Add(-2*time.Hour), 48*time.Hour)))
		require.NoError(t, s.Upsert(ctx, rec("own-new", 7, 7, now.Add(-time.Hour), 48*time.Hour)))
		require.NoError(t, s.Upsert(ctx, rec("delegated", 7, 99, now.Add(-time.Minute), 48*time.Hour)))
		require.NoError(t, s.Upsert(ctx, rec("expired", 7, 7, now.Add(-time.Second), time.Millisecond)))
		require.NoError(t, s.Upsert(ctx, rec("other", 8, 8, now, time.Hour)))

		got, err := s.FindByUser(ctx, 7, now)
		require.NoError(t, err)
		assert.Equal(t, "own-new", got.Key)

		got, err = s.FindLatestByUser(ctx, 7, now)
		require.NoError(t, err)
		assert.Equal(t, "delegated", got.Key)

		got, err = s.FindByUserAndCustomer(ctx, 7, 99, now)
		require.NoError(t, err)
		assert.Equal(t, "delegated", got.Key)

		_, err = s.FindByUserAndCustomer(ctx, 7, 100, now)
		require.ErrorIs(t, err, cart.ErrNotFound)

		_, err = s.FindByUser(ctx, 1000, now)
		require.ErrorIs(t, err, cart.ErrNotFound)
	})

	t.Run("finders break ties by key", func(t *testing.T) {
		s := newStore(t)
		for _, key := range []string{"b-cart", "d-cart", "a-cart", "c-cart"} {
			require.NoError(t, s.Upsert(ctx, rec(key, 5, 5, now.Add(-time.Hour), 48*time.Hour)))
		}

		for range 5 {
			got, err := s.FindByUser(ctx, 5, now)
			require.NoError(t, err)
			assert.Equal(t, "d-cart", got.Key)

			got, err = s.FindLatestByUser(ctx, 5, now)
			require.NoError(t, err)
			assert.Equal(t, "d-cart", got.Key)

			got, err = s.FindByUserAndCustomer(ctx, 5, 5, now)
			require.NoError(t, err)
			assert.Equal(t, "d-cart", got.Key)
		}
	})

	t.Run("delete expired", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Upsert(ctx, rec("live", 1, 1, now, time.Hour)))
		require.NoError(t, s.Upsert(ctx, rec("dead-1", 1, 1, now.Add(-2*time.Hour), time.Hour)))
		require.NoError(t, s.Upsert(ctx, rec("dead-2", 0, 0, now.Add(-3*time.Hour), time.Hour)))

		n, err := s.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = s.Get(ctx, "live")
		require.NoError(t, err)
		_, err = s.Get(ctx, "dead-1")
		require.ErrorIs(t, err, cart.ErrNotFound)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	runStoreContract(t, func(*testing.T) cart.Store { return cart.NewMemoryStore() })
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	runStoreContract(t, func(t *testing.T) cart.Store { return newSQLiteStore(t) })
}

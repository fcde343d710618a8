package cart_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
)

func TestContentHash(t *testing.T) {
	t.Parallel()

	base := cart.ContentHash([]byte(`{"cart":{"a":1},"totals":{"sum":10}}`))
	require.Len(t, base, 64)

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, base, cart.ContentHash([]byte(`{"cart":{"a":1},"totals":{"sum":10}}`)))
	})

	t.Run("ignores other fields and whitespace", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, base, cart.ContentHash([]byte(`{ "totals": {"sum": 10}, "coupon": "X", "cart": {"a": 1} }`)))
	})

	t.Run("sensitive to cart", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, base, cart.ContentHash([]byte(`{"cart":{"a":2},"totals":{"sum":10}}`)))
	})

	t.Run("sensitive to totals", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, base, cart.ContentHash([]byte(`{"cart":{"a":1},"totals":{"sum":11}}`)))
	})

	t.Run("non object input", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, cart.ContentHash([]byte(`not json`)), 64)
	})
}

func TestRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := cart.Record{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, rec.IsGuest())
	assert.False(t, rec.Expired(now))
	assert.True(t, rec.Expired(now.Add(time.Hour)))
	assert.Equal(t, time.Hour, rec.TTL(now))
	assert.Zero(t, rec.TTL(now.Add(2*time.Hour)))

	rec.UserID = 5
	assert.False(t, rec.IsGuest())

	assert.True(t, cart.SourceAPI.Valid())
	assert.False(t, cart.Source("cli").Valid())
}

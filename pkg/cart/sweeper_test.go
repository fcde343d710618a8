package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
)

func TestSweeper(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := cart.NewMemoryStore()
	f := newFixture(t, store)
	start := f.clock.Now()

	short, err := f.repo.Create(ctx, cart.Record{ExpiresAt: start.Add(time.Hour)})
	require.NoError(t, err)
	long, err := f.repo.Create(ctx, cart.Record{ExpiresAt: start.Add(48 * time.Hour)})
	require.NoError(t, err)

	sw := cart.NewSweeper(f.repo, cart.WithSchedule("*/5 * * * *"))
	assert.Equal(t, "cart_sweep", sw.Name())
	assert.Equal(t, "*/5 * * * *", sw.Schedule())

	f.clock.Advance(2 * time.Hour)
	require.NoError(t, sw.Handle(ctx))

	assert.Equal(t, 1, store.Len())
	assert.Zero(t, f.cache.Len(), "sweep clears the cache namespace")

	_, err = f.repo.Read(ctx, short)
	require.ErrorIs(t, err, cart.ErrNotFound)

	_, err = f.repo.Read(ctx, long)
	require.NoError(t, err)
}

func TestSweeper_DefaultSchedule(t *testing.T) {
	t.Parallel()

	sw := cart.NewSweeper(cart.NewRepository(cart.NewMemoryStore(), nil))
	assert.Equal(t, cart.DefaultSweepSchedule, sw.Schedule())
}

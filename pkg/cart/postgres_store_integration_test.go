//go:build integration

package cart_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/db"
)

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, db.DefaultConfig(url))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.MigratePool(ctx, pool, cart.PostgresMigrations(), "cart_migrations", nil))

	runStoreContract(t, func(t *testing.T) cart.Store {
		_, err := pool.Exec(ctx, "TRUNCATE carts")
		require.NoError(t, err)
		return cart.NewPostgresStore(pool)
	})
}

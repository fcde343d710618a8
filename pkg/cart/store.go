package cart

import (
	"context"
	"time"
)

// Store is the durable cart table.
//
// Update methods return the stored record after the change, or ErrNotFound
// when the key does not exist. Finders ignore records expired at now and
// return the most recently created match.
type Store interface {
	// Upsert inserts rec or replaces every field except CreatedAt.
	Upsert(ctx context.Context, rec Record) error
	Get(ctx context.Context, key string) (Record, error)
	UpdateValue(ctx context.Context, key string, value []byte, hash string, expiresAt time.Time) (Record, error)
	UpdateExpiry(ctx context.Context, key string, expiresAt time.Time) (Record, error)
	UpdateCustomer(ctx context.Context, key string, customerID int64) (Record, error)
	// Delete is a no-op for unknown keys.
	Delete(ctx context.Context, key string) error

	// FindByUser matches carts the user owns for themselves
	// (customer_id = user_id).
	FindByUser(ctx context.Context, userID int64, now time.Time) (Record, error)
	// FindLatestByUser matches any cart the user owns.
	FindLatestByUser(ctx context.Context, userID int64, now time.Time) (Record, error)
	FindByUserAndCustomer(ctx context.Context, userID, customerID int64, now time.Time) (Record, error)

	// DeleteExpired removes records with expires_at < now and reports how
	// many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/cartkeep/pkg/db"
)

const pgColumns = `cart_key, user_id, customer_id, value, hash, source, created_at, expires_at`

// PostgresStore keeps carts in the PostgreSQL "carts" table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a PostgresStore. Apply PostgresMigrations first.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	if rec.Key == "" {
		return ErrEmptyKey
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO carts (`+pgColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (cart_key) DO UPDATE SET
			user_id     = EXCLUDED.user_id,
			customer_id = EXCLUDED.customer_id,
			value       = EXCLUDED.value,
			hash        = EXCLUDED.hash,
			source      = EXCLUDED.source,
			expires_at  = EXCLUDED.expires_at
	`,
		rec.Key,
		rec.UserID,
		rec.CustomerID,
		string(normalizeValue(rec.Value)),
		rec.Hash,
		string(rec.Source),
		rec.CreatedAt.UTC(),
		rec.ExpiresAt.UTC(),
	)
	if err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (Record, error) {
	return s.one(ctx, `SELECT `+pgColumns+` FROM carts WHERE cart_key = $1`, key)
}

func (s *PostgresStore) UpdateValue(ctx context.Context, key string, value []byte, hash string, expiresAt time.Time) (Record, error) {
	return s.one(ctx, `
		UPDATE carts SET value = $2, hash = $3, expires_at = $4
		WHERE cart_key = $1
		RETURNING `+pgColumns,
		key, string(normalizeValue(value)), hash, expiresAt.UTC(),
	)
}

func (s *PostgresStore) UpdateExpiry(ctx context.Context, key string, expiresAt time.Time) (Record, error) {
	return s.one(ctx, `
		UPDATE carts SET expires_at = $2
		WHERE cart_key = $1
		RETURNING `+pgColumns,
		key, expiresAt.UTC(),
	)
}

func (s *PostgresStore) UpdateCustomer(ctx context.Context, key string, customerID int64) (Record, error) {
	return s.one(ctx, `
		UPDATE carts SET customer_id = $2
		WHERE cart_key = $1
		RETURNING `+pgColumns,
		key, customerID,
	)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE cart_key = $1`, key); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID int64, now time.Time) (Record, error) {
	return s.one(ctx, `
		SELECT `+pgColumns+` FROM carts
		WHERE user_id = $1 AND customer_id = $1 AND expires_at > $2
		ORDER BY created_at DESC, cart_key DESC
		LIMIT 1
	`, userID, now.UTC())
}

func (s *PostgresStore) FindLatestByUser(ctx context.Context, userID int64, now time.Time) (Record, error) {
	return s.one(ctx, `
		SELECT `+pgColumns+` FROM carts
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC, cart_key DESC
		LIMIT 1
	`, userID, now.UTC())
}

func (s *PostgresStore) FindByUserAndCustomer(ctx context.Context, userID, customerID int64, now time.Time) (Record, error) {
	return s.one(ctx, `
		SELECT `+pgColumns+` FROM carts
		WHERE user_id = $1 AND customer_id = $2 AND expires_at > $3
		ORDER BY created_at DESC, cart_key DESC
		LIMIT 1
	`, userID, customerID, now.UTC())
}

// DeleteExpired removes expired carts in one transaction.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM carts WHERE expires_at < $1`, now.UTC())
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, errors.Join(ErrStoreFailed, err)
	}
	return n, nil
}

func (s *PostgresStore) one(ctx context.Context, query string, args ...any) (Record, error) {
	var (
		rec    Record
		value  []byte
		source string
	)
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&rec.Key,
		&rec.UserID,
		&rec.CustomerID,
		&value,
		&rec.Hash,
		&source,
		&rec.CreatedAt,
		&rec.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, errors.Join(ErrStoreFailed, err)
	}
	rec.Value = value
	rec.Source = Source(source)
	return rec, nil
}

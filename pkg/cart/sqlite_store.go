package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const sqliteColumns = `cart_key, user_id, customer_id, value, hash, source, created_at, expires_at`

// SQLiteStore keeps carts in a SQLite "carts" table.
// Timestamps are stored as unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLiteStore. Apply SQLiteMigrations first.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec Record) error {
	if rec.Key == "" {
		return ErrEmptyKey
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO carts (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cart_key) DO UPDATE SET
			user_id     = excluded.user_id,
			customer_id = excluded.customer_id,
			value       = excluded.value,
			hash        = excluded.hash,
			source      = excluded.source,
			expires_at  = excluded.expires_at
	`,
		rec.Key,
		rec.UserID,
		rec.CustomerID,
		string(normalizeValue(rec.Value)),
		rec.Hash,
		string(rec.Source),
		rec.CreatedAt.UnixNano(),
		rec.ExpiresAt.UnixNano(),
	)
	if err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Record, error) {
	return s.one(ctx, `SELECT `+sqliteColumns+` FROM carts WHERE cart_key = ?`, key)
}

func (s *SQLiteStore) UpdateValue(ctx context.Context, key string, value []byte, hash string, expiresAt time.Time) (Record, error) {
	return s.one(ctx, `
		UPDATE carts SET value = ?, hash = ?, expires_at = ?
		WHERE cart_key = ?
		RETURNING `+sqliteColumns,
		string(normalizeValue(value)), hash, expiresAt.UnixNano(), key,
	)
}

func (s *SQLiteStore) UpdateExpiry(ctx context.Context, key string, expiresAt time.Time) (Record, error) {
	return s.one(ctx, `
		UPDATE carts SET expires_at = ?
		WHERE cart_key = ?
		RETURNING `+sqliteColumns,
		expiresAt.UnixNano(), key,
	)
}

func (s *SQLiteStore) UpdateCustomer(ctx context.Context, key string, customerID int64) (Record, error) {
	return s.one(ctx, `
		UPDATE carts SET customer_id = ?
		WHERE cart_key = ?
		RETURNING `+sqliteColumns,
		customerID, key,
	)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE cart_key = ?`, key); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

func (s *SQLiteStore) FindByUser(ctx context.Context, userID int64, now time.Time) (Record, error) {
	return s.one(ctx, `
		SELECT `+sqliteColumns+` FROM carts
		WHERE user_id = ? AND customer_id = ? AND expires_at > ?
		ORDER BY created_at DESC, cart_key DESC
		LIMIT 1
	`, userID, userID, now.UnixNano())
}

func (s *SQLiteStore) FindLatestByUser(ctx context.Context, userID int64, now time.Time) (Record, error) {
	return s.one(ctx, `
		SELECT `+sqliteColumns+` FROM carts
		WHERE user_id = ? AND expires_at > ?
		ORDER BY created_at DESC, cart_key DESC
		LIMIT 1
	`, userID, now.UnixNano())
}

func (s *SQLiteStore) FindByUserAndCustomer(ctx context.Context, userID, customerID int64, now time.Time) (Record, error) {
	return s.one(ctx, `
		SELECT `+sqliteColumns+` FROM carts
		WHERE user_id = ? AND customer_id = ? AND expires_at > ?
		ORDER BY created_at DESC, cart_key DESC
		LIMIT 1
	`, userID, customerID, now.UnixNano())
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM carts WHERE expires_at < ?`, now.UnixNano())
	if err != nil {
		return 0, errors.Join(ErrStoreFailed, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrStoreFailed, err)
	}
	return n, nil
}

func (s *SQLiteStore) one(ctx context.Context, query string, args ...any) (Record, error) {
	var (
		rec                  Record
		value, source        string
		createdAt, expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.Key,
		&rec.UserID,
		&rec.CustomerID,
		&value,
		&rec.Hash,
		&source,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, errors.Join(ErrStoreFailed, err)
	}
	rec.Value = []byte(value)
	rec.Source = Source(source)
	rec.CreatedAt = time.Unix(0, createdAt)
	rec.ExpiresAt = time.Unix(0, expiresAt)
	return rec, nil
}

package cart

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for tests and demos.
type MemoryStore struct {
	records map[string]Record
	mu      sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Upsert(_ context.Context, rec Record) error {
	if rec.Key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.records[rec.Key]; ok {
		rec.CreatedAt = old.CreatedAt
	}
	rec.Value = slices.Clone(rec.Value)
	s.records[rec.Key] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) UpdateValue(_ context.Context, key string, value []byte, hash string, expiresAt time.Time) (Record, error) {
	return s.update(key, func(r *Record) {
		r.Value = slices.Clone(value)
		r.Hash = hash
		r.ExpiresAt = expiresAt
	})
}

func (s *MemoryStore) UpdateExpiry(_ context.Context, key string, expiresAt time.Time) (Record, error) {
	return s.update(key, func(r *Record) { r.ExpiresAt = expiresAt })
}

func (s *MemoryStore) UpdateCustomer(_ context.Context, key string, customerID int64) (Record, error) {
	return s.update(key, func(r *Record) { r.CustomerID = customerID })
}

func (s *MemoryStore) update(key string, fn func(*Record)) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	fn(&rec)
	s.records[key] = rec
	return rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *MemoryStore) FindByUser(_ context.Context, userID int64, now time.Time) (Record, error) {
	return s.latest(now, func(r Record) bool {
		return r.UserID == userID && r.CustomerID == userID
	})
}

func (s *MemoryStore) FindLatestByUser(_ context.Context, userID int64, now time.Time) (Record, error) {
	return s.latest(now, func(r Record) bool { return r.UserID == userID })
}

func (s *MemoryStore) FindByUserAndCustomer(_ context.Context, userID, customerID int64, now time.Time) (Record, error) {
	return s.latest(now, func(r Record) bool {
		return r.UserID == userID && r.CustomerID == customerID
	})
}

func (s *MemoryStore) latest(now time.Time, match func(Record) bool) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found Record
		ok    bool
	)
	for _, r := range s.records {
		if r.Expired(now) || !match(r) {
			continue
		}
		if !ok || newer(r, found) {
			found, ok = r, true
		}
	}
	if !ok {
		return Record{}, ErrNotFound
	}
	return found, nil
}

// newer orders by creation time, then by key, matching the SQL stores.
func newer(a, b Record) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.Key > b.Key
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, r := range s.records {
		if r.ExpiresAt.Before(now) {
			delete(s.records, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

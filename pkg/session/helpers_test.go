package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/cache"
	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/cookie"
	"github.com/dmitrymomot/cartkeep/pkg/session"
)

const secret = "0123456789abcdef0123456789abcdef"

var errStoreDown = errors.New("store down")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// spyStore counts writes and can be told to fail them.
type spyStore struct {
	cart.Store
	mu         sync.Mutex
	upserts    int
	deletes    int
	rebinds    int
	failUpsert bool
}

func (s *spyStore) Upsert(ctx context.Context, rec cart.Record) error {
	s.mu.Lock()
	s.upserts++
	fail := s.failUpsert
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.Store.Upsert(ctx, rec)
}

func (s *spyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	return s.Store.Delete(ctx, key)
}

func (s *spyStore) UpdateCustomer(ctx context.Context, key string, customerID int64) (cart.Record, error) {
	s.mu.Lock()
	s.rebinds++
	s.mu.Unlock()
	return s.Store.UpdateCustomer(ctx, key, customerID)
}

// Writes counts every durable write that changes a record.
func (s *spyStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts + s.rebinds
}

func (s *spyStore) Upserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

func (s *spyStore) Deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}

func (s *spyStore) FailUpserts(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpsert = fail
}

type fixture struct {
	clock   *clock
	store   *spyStore
	repo    *cart.Repository
	codec   *cookie.Codec
	manager *session.Manager
}

func newFixture(t *testing.T, opts ...session.Option) *fixture {
	t.Helper()

	clk := &clock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	c := cache.NewMemory[cart.Record](cache.WithCleanupInterval(0), cache.WithClock(clk.Now))
	t.Cleanup(func() { _ = c.Close() })

	store := &spyStore{Store: cart.NewMemoryStore()}
	repo := cart.NewRepository(store, c, cart.WithClock(clk.Now))

	codec, err := cookie.NewCodec(secret)
	require.NoError(t, err)

	return &fixture{
		clock:   clk,
		store:   store,
		repo:    repo,
		codec:   codec,
		manager: session.NewManager(repo, codec, opts...),
	}
}

// seed stores a cart directly and returns its key.
func (f *fixture) seed(t *testing.T, rec cart.Record) string {
	t.Helper()
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = f.clock.Now().Add(48 * time.Hour)
	}
	if rec.Value == nil {
		rec.Value = []byte(`{"cart":{"sku-1":2}}`)
	}
	key, err := f.repo.Create(context.Background(), rec)
	require.NoError(t, err)
	return key
}

func (f *fixture) cookieFor(key string, userID, customerID int64, expiring, expiration time.Time) string {
	return f.codec.Encode(cookie.Payload{
		CartKey:    key,
		Expiration: expiration,
		Expiring:   expiring,
		UserID:     userID,
		CustomerID: customerID,
	})
}

func customer(id int64) session.Identity {
	return session.Identity{UserID: id, Roles: []string{session.RoleCustomer}}
}

func operator(id int64) session.Identity {
	return session.Identity{UserID: id, Roles: []string{"sales"}}
}

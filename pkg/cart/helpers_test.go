package cart_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/cache"
	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/db"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
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

// countingStore records how often the durable store is read.
type countingStore struct {
	cart.Store
	mu   sync.Mutex
	gets int
}

func (s *countingStore) Get(ctx context.Context, key string) (cart.Record, error) {
	s.mu.Lock()
	s.gets++
	s.mu.Unlock()
	return s.Store.Get(ctx, key)
}

func (s *countingStore) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// hookStore runs afterGet once, right after the first successful Get.
type hookStore struct {
	cart.Store
	once     sync.Once
	afterGet func(key string)
}

func (s *hookStore) Get(ctx context.Context, key string) (cart.Record, error) {
	rec, err := s.Store.Get(ctx, key)
	if err == nil && s.afterGet != nil {
		s.once.Do(func() { s.afterGet(key) })
	}
	return rec, err
}

type fixture struct {
	clock *clock
	store *countingStore
	cache *cache.Memory[cart.Record]
	repo  *cart.Repository
}

func newFixture(t *testing.T, store cart.Store) *fixture {
	t.Helper()

	clk := newClock()
	c := cache.NewMemory[cart.Record](
		cache.WithCleanupInterval(0),
		cache.WithClock(clk.Now),
	)
	t.Cleanup(func() { _ = c.Close() })

	cs := &countingStore{Store: store}
	return &fixture{
		clock: clk,
		store: cs,
		cache: c,
		repo:  cart.NewRepository(cs, c, cart.WithClock(clk.Now)),
	}
}

func newSQLiteStore(t *testing.T) *cart.SQLiteStore {
	t.Helper()

	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(ctx, conn, db.DialectSQLite, cart.SQLiteMigrations(), "cart_migrations", nil))
	return cart.NewSQLiteStore(conn)
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

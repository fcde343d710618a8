package middlewares_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/pkg/cache"
	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/cookie"
	"github.com/dmitrymomot/cartkeep/pkg/session"
)

const secret = "0123456789abcdef0123456789abcdef"

func newSessionManager(t *testing.T) (*session.Manager, *cart.Repository) {
	t.Helper()

	c := cache.NewMemory[cart.Record](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = c.Close() })

	repo := cart.NewRepository(cart.NewMemoryStore(), c)
	codec, err := cookie.NewCodec(secret)
	require.NoError(t, err)

	return session.NewManager(repo, codec), repo
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

package session

import (
	"context"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/cookie"
)

// Manager dispatches each request to the Native or API engine.
type Manager struct {
	native *Native
	api    *API
}

var _ Engine = (*Manager)(nil)

// NewManager creates both engines over the same repository.
func NewManager(repo *cart.Repository, codec *cookie.Codec, opts ...Option) *Manager {
	return &Manager{
		native: NewNative(repo, codec, opts...),
		api:    NewAPI(repo, opts...),
	}
}

// Resolve uses the API engine when req.API is set, the cookie engine
// otherwise. Explicit cart key and customer are dropped for cookie requests.
func (m *Manager) Resolve(ctx context.Context, req Request) *Context {
	if req.API {
		return m.api.Resolve(ctx, req)
	}
	req.CartKey, req.CustomerID = "", 0
	return m.native.Resolve(ctx, req)
}

// Save persists c through the engine that resolved it.
func (m *Manager) Save(ctx context.Context, c *Context) error {
	return c.Save(ctx)
}

// Destroy deletes c through the engine that resolved it.
func (m *Manager) Destroy(ctx context.Context, c *Context) error {
	return c.Destroy(ctx)
}

// EncodeCookie returns the signed cookie value for a native session.
func (m *Manager) EncodeCookie(c *Context) string {
	return m.native.EncodeCookie(c)
}

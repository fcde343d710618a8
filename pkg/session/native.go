package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/cookie"
)

// Native resolves cookie-based sessions for the web storefront.
type Native struct {
	codec *cookie.Codec
	base
}

var _ Engine = (*Native)(nil)

// NewNative creates the cookie flow engine.
func NewNative(repo *cart.Repository, codec *cookie.Codec, opts ...Option) *Native {
	return &Native{
		base:  newBase(repo, cart.SourceNative, opts),
		codec: codec,
	}
}

// Resolve decodes the cart cookie and applies, in order: validation,
// guest-to-user migration and near-expiry refresh.
func (n *Native) Resolve(ctx context.Context, req Request) *Context {
	now := n.repo.Now()
	user := req.User

	p, ok := n.codec.Decode(req.Cookie)
	if !ok {
		if req.Cookie != "" {
			n.log.DebugContext(ctx, "cart cookie rejected")
		}
		return n.start(user, now)
	}

	if reason := invalidReason(p, user, now); reason != "" {
		n.log.DebugContext(ctx, "cart session invalid, starting fresh",
			slog.String("cart_key", p.CartKey),
			slog.String("reason", reason),
		)
		if err := n.repo.Delete(ctx, p.CartKey); err != nil {
			n.log.WarnContext(ctx, "invalid cart cleanup failed",
				slog.String("cart_key", p.CartKey),
				slog.String("error", err.Error()),
			)
		}
		return n.start(user, now)
	}

	c := &Context{
		Key:        p.CartKey,
		UserID:     p.UserID,
		CustomerID: p.CustomerID,
		ExpiringAt: p.Expiring,
		ExpiresAt:  p.Expiration,
		Data:       make(map[string]json.RawMessage),
		Source:     cart.SourceNative,
		engine:     n,
		newKey:     n.repo.NewKey,
	}

	rec, err := n.repo.Read(ctx, p.CartKey)
	switch {
	case err == nil:
		c.Data = decodeData(rec.Value)
		c.CustomerID = rec.CustomerID
	case errors.Is(err, cart.ErrNotFound):
		// Cookie issued but nothing saved yet.
	default:
		n.log.WarnContext(ctx, "cart read failed, starting fresh",
			slog.String("cart_key", p.CartKey),
			slog.String("error", err.Error()),
		)
		return n.start(user, now)
	}

	if user.IsLoggedIn() && p.IsGuest() {
		n.migrate(ctx, c, user.UserID, now)
	}

	if now.After(c.ExpiringAt) {
		n.refresh(ctx, c, now)
		c.cookie = CookieSet
	}

	return c
}

// EncodeCookie returns the cookie value for c.
func (n *Native) EncodeCookie(c *Context) string {
	return n.codec.Encode(cookie.Payload{
		CartKey:    c.Key,
		Expiration: c.ExpiresAt,
		Expiring:   c.ExpiringAt,
		UserID:     c.UserID,
		CustomerID: c.CustomerID,
	})
}

// start opens a brand new session. It is dirty so the first response
// creates the record and sets the cookie.
func (n *Native) start(user Identity, now time.Time) *Context {
	c := n.fresh(n, user.UserID, user.UserID, now)
	c.dirty = true
	c.cookie = CookieSet
	return c
}

// migrate re-homes a guest cart under userID, bound to userID as customer.
// The new key is written before the old one is deleted, so a failure leaves
// at least one usable cart. On a failed write the session stays on the
// guest key.
func (n *Native) migrate(ctx context.Context, c *Context, userID int64, now time.Time) {
	oldKey := c.Key
	newKey := n.repo.NewKey()

	value, err := json.Marshal(c.Data)
	if err != nil {
		n.migrationFailed(ctx, oldKey, newKey, "encode", err)
		return
	}

	expiring, expires := now.Add(n.expiring), now.Add(n.expiration)
	_, err = n.repo.Create(ctx, cart.Record{
		Key:        newKey,
		UserID:     userID,
		CustomerID: userID,
		Value:      value,
		ExpiresAt:  expires,
		Source:     cart.SourceNative,
	})
	if err != nil {
		n.migrationFailed(ctx, oldKey, newKey, "write", err)
		return
	}

	c.Key = newKey
	c.UserID, c.CustomerID = userID, userID
	c.ExpiringAt, c.ExpiresAt = expiring, expires
	c.cookie = CookieSet
	c.dirty = false

	if err := n.repo.Delete(ctx, oldKey); err != nil {
		n.migrationFailed(ctx, oldKey, newKey, "delete old key", err)
	}

	n.log.DebugContext(ctx, "guest cart migrated",
		slog.String("from", oldKey),
		slog.String("cart_key", newKey),
		slog.Int64("user_id", userID),
	)
}

func (n *Native) migrationFailed(ctx context.Context, oldKey, newKey, step string, err error) {
	n.log.ErrorContext(ctx, "cart migration failed",
		slog.String("from", oldKey),
		slog.String("to", newKey),
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
}

// invalidReason returns why a decoded cookie cannot be used, or "".
func invalidReason(p cookie.Payload, user Identity, now time.Time) string {
	switch {
	case now.After(p.Expiration):
		return "expired"
	case !user.IsLoggedIn() && !p.IsGuest():
		return "owner logged out"
	case user.IsLoggedIn() && !p.IsGuest() && p.UserID != user.UserID:
		return "identity mismatch"
	default:
		return ""
	}
}

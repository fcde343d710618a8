package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/id"
	"github.com/dmitrymomot/cartkeep/pkg/logger"
)

// CookieAction tells the HTTP layer what to do with the session cookie.
type CookieAction uint8

const (
	CookieKeep CookieAction = iota
	CookieSet
	CookieClear
)

// Context is the cart session of one request.
//
// It is not safe for concurrent use; one request owns it. Mutations through
// Set and Delete mark it dirty, and Save writes it only when dirty.
type Context struct {
	ExpiringAt time.Time
	ExpiresAt  time.Time
	Data       map[string]json.RawMessage
	engine     Engine
	newKey     func() string
	Key        string
	Source     cart.Source
	UserID     int64
	CustomerID int64
	dirty      bool
	cookie     CookieAction
}

// IsGuest reports whether the cart belongs to an anonymous visitor.
func (c *Context) IsGuest() bool {
	return c.UserID == 0
}

// IsDirty reports whether the session has unsaved changes.
func (c *Context) IsDirty() bool {
	return c.dirty
}

// MarkDirty forces the next Save to write.
func (c *Context) MarkDirty() {
	c.dirty = true
}

// Cookie returns what the HTTP layer should do with the session cookie.
func (c *Context) Cookie() CookieAction {
	return c.cookie
}

// Set stores v under field.
func (c *Context) Set(field string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrInvalidValue, err)
	}
	if c.Data == nil {
		c.Data = make(map[string]json.RawMessage)
	}
	c.Data[field] = raw
	c.dirty = true
	return nil
}

// Get decodes field into dst. It reports false if the field is absent.
func (c *Context) Get(field string, dst any) (bool, error) {
	raw, ok := c.Data[field]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, errors.Join(ErrInvalidValue, err)
	}
	return true, nil
}

// Delete removes field. The session becomes dirty only if it existed.
func (c *Context) Delete(field string) {
	if _, ok := c.Data[field]; ok {
		delete(c.Data, field)
		c.dirty = true
	}
}

// Save persists the session if it is dirty. The dirty flag is cleared
// only after a successful write.
func (c *Context) Save(ctx context.Context) error {
	if !c.dirty || c.engine == nil {
		return nil
	}
	if err := c.engine.Save(ctx, c); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Destroy deletes the stored cart and resets the session (see Forget).
func (c *Context) Destroy(ctx context.Context) error {
	if c.engine == nil {
		c.Forget()
		return nil
	}
	return c.engine.Destroy(ctx, c)
}

// Forget empties the session in memory: new key, no data, cookie cleared.
// The stored cart is left alone.
func (c *Context) Forget() {
	c.Data = make(map[string]json.RawMessage)
	c.dirty = false
	c.cookie = CookieClear
	if c.newKey != nil {
		c.Key = c.newKey()
	} else {
		c.Key = id.NewCartKey()
	}
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying the session.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the session stored by WithContext.
func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Context)
	return c, ok && c != nil
}

// LogExtractor adds the request's cart key to log records.
func LogExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		c, ok := FromContext(ctx)
		if !ok || c.Key == "" {
			return slog.Attr{}, false
		}
		return slog.String("cart_key", c.Key), true
	}
}

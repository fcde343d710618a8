package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/logger"
)

// Engine resolves and persists cart sessions for one flow.
type Engine interface {
	// Resolve returns the session for req. It never fails: lookup errors
	// are logged and degrade to a fresh session.
	Resolve(ctx context.Context, req Request) *Context
	Save(ctx context.Context, c *Context) error
	Destroy(ctx context.Context, c *Context) error
}

// base holds what both flows share.
type base struct {
	repo       *cart.Repository
	log        *slog.Logger
	source     cart.Source
	expiring   time.Duration
	expiration time.Duration
}

func newBase(repo *cart.Repository, source cart.Source, opts []Option) base {
	o := &options{log: logger.NewNope(), cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.cfg.normalized()

	b := base{
		repo:   repo,
		log:    o.log.With(slog.String("flow", string(source))),
		source: source,
	}
	if source == cart.SourceAPI {
		b.expiring, b.expiration = cfg.APIExpiring, cfg.APIExpiration
	} else {
		b.expiring, b.expiration = cfg.NativeExpiring, cfg.NativeExpiration
	}
	return b
}

// fresh builds an empty session for the given owner with a new key and
// standard lifetimes.
func (b *base) fresh(e Engine, userID, customerID int64, now time.Time) *Context {
	return &Context{
		Key:        b.repo.NewKey(),
		UserID:     userID,
		CustomerID: customerID,
		ExpiringAt: now.Add(b.expiring),
		ExpiresAt:  now.Add(b.expiration),
		Data:       make(map[string]json.RawMessage),
		Source:     b.source,
		engine:     e,
		newKey:     b.repo.NewKey,
	}
}

// renew pushes both lifetimes forward from now.
func (b *base) renew(c *Context, now time.Time) {
	c.ExpiringAt = now.Add(b.expiring)
	c.ExpiresAt = now.Add(b.expiration)
}

// refresh extends a session past its expiring point. Only the durable
// expiry is touched; the payload is not rewritten.
func (b *base) refresh(ctx context.Context, c *Context, now time.Time) {
	b.renew(c, now)
	if err := b.repo.UpdateExpiry(ctx, c.Key, c.ExpiresAt); err != nil && !errors.Is(err, cart.ErrNotFound) {
		b.log.WarnContext(ctx, "cart expiry refresh failed",
			slog.String("cart_key", c.Key),
			slog.String("error", err.Error()),
		)
	}
}

// load fills c from the stored record.
func (b *base) load(c *Context, rec cart.Record) {
	c.Data = decodeData(rec.Value)
	c.UserID = rec.UserID
	c.CustomerID = rec.CustomerID
	c.ExpiresAt = rec.ExpiresAt
	c.ExpiringAt = rec.ExpiresAt.Add(b.expiring - b.expiration)
}

// Save writes the session when its payload is valid.
func (b *base) Save(ctx context.Context, c *Context) error {
	if !IsCartDataValid(ctx, b.repo, c) {
		b.log.InfoContext(ctx, "cart persistence skipped",
			slog.String("cart_key", c.Key),
			slog.String("reason", "payload without cart for unknown key"),
		)
		return ErrPersistenceSkipped
	}

	value, err := json.Marshal(c.Data)
	if err != nil {
		return errors.Join(ErrSaveFailed, ErrInvalidValue, err)
	}

	_, err = b.repo.Create(ctx, cart.Record{
		Key:        c.Key,
		UserID:     c.UserID,
		CustomerID: c.CustomerID,
		Value:      value,
		ExpiresAt:  c.ExpiresAt,
		Source:     c.Source,
	})
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

// Destroy deletes the stored cart and forgets the session.
func (b *base) Destroy(ctx context.Context, c *Context) error {
	err := b.repo.Delete(ctx, c.Key)
	c.Forget()
	if err != nil {
		return errors.Join(ErrDestroyFailed, err)
	}
	return nil
}

// IsCartDataValid reports whether c may be persisted. A session is invalid
// only when it carries data, nothing is stored under its key yet, and its
// "cart" field is empty.
func IsCartDataValid(ctx context.Context, repo *cart.Repository, c *Context) bool {
	if len(c.Data) == 0 {
		return true
	}
	if !isEmptyJSON(c.Data["cart"]) {
		return true
	}
	exists, err := repo.Exists(ctx, c.Key)
	if err != nil {
		// Unknown; let the write decide.
		return true
	}
	return exists
}

var emptyJSON = [][]byte{
	[]byte("null"),
	[]byte("{}"),
	[]byte("[]"),
	[]byte(`""`),
	[]byte("0"),
	[]byte("false"),
}

func isEmptyJSON(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return true
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, v); err == nil {
		v = compacted.Bytes()
	}
	for _, e := range emptyJSON {
		if bytes.Equal(v, e) {
			return true
		}
	}
	return false
}

func decodeData(value []byte) map[string]json.RawMessage {
	data := make(map[string]json.RawMessage)
	if len(value) == 0 {
		return data
	}
	if err := json.Unmarshal(value, &data); err != nil || data == nil {
		return make(map[string]json.RawMessage)
	}
	return data
}

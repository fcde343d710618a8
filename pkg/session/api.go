package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/cartkeep/pkg/cart"
)

// API resolves header-based sessions for headless clients.
type API struct {
	base
}

var _ Engine = (*API)(nil)

// NewAPI creates the API flow engine.
func NewAPI(repo *cart.Repository, opts ...Option) *API {
	return &API{base: newBase(repo, cart.SourceAPI, opts)}
}

// Resolve picks the cart for req:
//   - an operator naming a customer gets the cart scoped to that pair;
//   - a logged-in user gets the explicit key if they own it, else their own cart;
//   - a guest gets the explicit key if it names a guest cart.
//
// Expired records are treated as missing. With no match an operator falls
// back to their most recent cart and everyone else gets a new key.
func (a *API) Resolve(ctx context.Context, req Request) *Context {
	now := a.repo.Now()
	user := req.User
	delegated := isDelegated(req)

	var (
		key        string
		customerID int64
	)
	switch {
	case delegated:
		customerID = req.CustomerID
		key = a.lookup(ctx, "by user and customer", func() (string, error) {
			return a.repo.FindByUserAndCustomer(ctx, user.UserID, req.CustomerID)
		})

	case user.IsLoggedIn():
		customerID = user.UserID
		if req.CartKey != "" {
			owned, err := a.repo.ExistsForUser(ctx, req.CartKey, user.UserID)
			if err != nil {
				a.lookupFailed(ctx, "explicit key", err)
			}
			if owned {
				key = req.CartKey
			}
		}
		if key == "" {
			key = a.lookup(ctx, "by user", func() (string, error) {
				return a.repo.FindByUser(ctx, user.UserID)
			})
		}

	case req.CartKey != "":
		key = req.CartKey
	}

	if key != "" {
		rec, err := a.repo.Read(ctx, key)
		switch {
		case err == nil && rec.Expired(now):
			a.log.DebugContext(ctx, "expired cart ignored", slog.String("cart_key", key))
		case err == nil && (user.IsLoggedIn() || rec.IsGuest()):
			c := a.fresh(a, user.UserID, customerID, now)
			c.Key = key
			a.load(c, rec)
			if !user.IsLoggedIn() {
				// Guests inherit whatever customer the cart is bound to.
				c.CustomerID = rec.CustomerID
			}
			if now.After(c.ExpiringAt) {
				a.refresh(ctx, c, now)
			}
			return c
		case err != nil && !errors.Is(err, cart.ErrNotFound):
			a.lookupFailed(ctx, "read", err)
		}
	}

	if user.IsLoggedIn() && !user.IsCustomer() && !delegated {
		latest := a.repo.FindLatestByUser(ctx, user.UserID)
		if rec, err := a.repo.Read(ctx, latest); err == nil && !rec.Expired(now) {
			c := a.fresh(a, user.UserID, rec.CustomerID, now)
			c.Key = latest
			a.load(c, rec)
			if now.After(c.ExpiringAt) {
				a.refresh(ctx, c, now)
			}
			return c
		}
		c := a.fresh(a, user.UserID, customerID, now)
		c.Key = latest
		return c
	}

	return a.fresh(a, user.UserID, customerID, now)
}

func (a *API) lookup(ctx context.Context, what string, fn func() (string, error)) string {
	key, err := fn()
	if err != nil && !errors.Is(err, cart.ErrNotFound) {
		a.lookupFailed(ctx, what, err)
	}
	return key
}

func (a *API) lookupFailed(ctx context.Context, what string, err error) {
	a.log.WarnContext(ctx, "cart lookup failed",
		slog.String("lookup", what),
		slog.String("error", err.Error()),
	)
}

// isDelegated reports whether an operator acts for another customer.
func isDelegated(req Request) bool {
	return req.User.IsLoggedIn() &&
		!req.User.IsCustomer() &&
		req.CustomerID > 0 &&
		req.CustomerID != req.User.UserID
}

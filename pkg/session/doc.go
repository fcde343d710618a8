// Package session resolves which cart a request works with.
//
// Two flows exist. The native flow keeps the cart key in a signed cookie
// (see pkg/cookie); the API flow takes an optional cart key and customer id
// from request headers and binds carts to the authenticated user. [Manager]
// selects the engine from [Request.API]:
//
//	m := session.NewManager(repo, codec, session.WithLogger(log))
//
//	sc := m.Resolve(ctx, session.Request{
//	    API:    false,
//	    Cookie: cookieValue,
//	    User:   session.Identity{UserID: 42, Roles: []string{session.RoleCustomer}},
//	})
//	_ = sc.Set("cart", items)
//	...
//	if err := sc.Save(ctx); err != nil && !errors.Is(err, session.ErrPersistenceSkipped) {
//	    log.Error("cart save failed", "error", err)
//	}
//
// # Native flow
//
// A missing, malformed or tampered cookie starts a fresh session. A cookie
// is invalid when it has expired, when its registered owner is no longer
// logged in, or when a different user is logged in; the stored cart is then
// deleted and a fresh session starts. A guest cart seen by a logged-in user
// is migrated to a new key owned by that user: the new key is written
// before the old one is deleted. Past the expiring point (47h by default)
// the expiry is extended to 48h from now.
//
// # API flow
//
// An operator (identity without [RoleCustomer]) who names a customer works
// on the cart scoped to that pair. A logged-in user gets the explicit cart
// key if they own it, otherwise their own most recent cart. A guest gets the
// explicit key only if it names a guest cart. Lifetimes default to 6 and 7
// days.
//
// # Persistence
//
// Resolve never fails. [Context.Save] writes only dirty sessions, and skips
// (with [ErrPersistenceSkipped]) payloads rejected by [IsCartDataValid].
// [Context.Destroy] deletes the stored cart; [Context.Forget] only resets
// the in-memory session.
package session

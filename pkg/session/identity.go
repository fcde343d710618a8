package session

import "slices"

// RoleCustomer marks an identity that shops for itself. Identities without
// it (operators, sales agents) may manage carts on a customer's behalf.
const RoleCustomer = "customer"

// Identity is the authenticated principal of a request.
// UserID 0 is an anonymous visitor.
type Identity struct {
	Roles  []string
	UserID int64
}

// Guest returns the anonymous identity.
func Guest() Identity {
	return Identity{}
}

func (i Identity) IsGuest() bool    { return i.UserID == 0 }
func (i Identity) IsLoggedIn() bool { return i.UserID > 0 }

// IsCustomer reports whether the identity carries RoleCustomer.
func (i Identity) IsCustomer() bool {
	return slices.Contains(i.Roles, RoleCustomer)
}

// Request is everything the engine needs to know about an HTTP request.
// CartKey and CustomerID come from request headers and are only honoured
// when API is true.
type Request struct {
	Cookie     string
	CartKey    string
	User       Identity
	CustomerID int64
	API        bool
}

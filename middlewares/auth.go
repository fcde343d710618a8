package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/cartkeep/pkg/session"
)

// Authenticator answers the two questions the cart session needs about a
// request. Verifying credentials is its job, not the session's.
type Authenticator interface {
	// IsAPIRequest reports whether the request uses the headless flow.
	IsAPIRequest(r *http.Request) bool
	// Identity returns the authenticated principal, session.Guest() if none.
	Identity(r *http.Request) session.Identity
}

// Header names read by HeaderAuthenticator.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRoles = "X-User-Roles"
)

// HeaderAuthenticator trusts identity headers set by an authenticating
// gateway in front of the service. Never expose it directly to clients.
type HeaderAuthenticator struct {
	// APIPrefix marks headless routes. Default "/api/".
	APIPrefix string
}

var _ Authenticator = HeaderAuthenticator{}

// IsAPIRequest is true for paths under APIPrefix and for requests carrying
// an Authorization header.
func (a HeaderAuthenticator) IsAPIRequest(r *http.Request) bool {
	prefix := a.APIPrefix
	if prefix == "" {
		prefix = "/api/"
	}
	return strings.HasPrefix(r.URL.Path, prefix) || r.Header.Get("Authorization") != ""
}

// Identity parses X-User-ID (positive integer) and X-User-Roles
// (comma-separated). Anything unparsable is a guest.
func (a HeaderAuthenticator) Identity(r *http.Request) session.Identity {
	uid, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderUserID)), 10, 64)
	if err != nil || uid <= 0 {
		return session.Guest()
	}

	var roles []string
	for role := range strings.SplitSeq(r.Header.Get(HeaderUserRoles), ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return session.Identity{UserID: uid, Roles: roles}
}

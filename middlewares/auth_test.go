package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/cartkeep/middlewares"
	"github.com/dmitrymomot/cartkeep/pkg/session"
)

func TestHeaderAuthenticator_IsAPIRequest(t *testing.T) {
	t.Parallel()

	a := middlewares.HeaderAuthenticator{}

	assert.True(t, a.IsAPIRequest(httptest.NewRequest(http.MethodGet, "/api/cart", nil)))
	assert.False(t, a.IsAPIRequest(httptest.NewRequest(http.MethodGet, "/cart", nil)))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer x")
	assert.True(t, a.IsAPIRequest(req))

	custom := middlewares.HeaderAuthenticator{APIPrefix: "/v2/"}
	assert.True(t, custom.IsAPIRequest(httptest.NewRequest(http.MethodGet, "/v2/cart", nil)))
	assert.False(t, custom.IsAPIRequest(httptest.NewRequest(http.MethodGet, "/api/cart", nil)))
}

func TestHeaderAuthenticator_Identity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		userID string
		roles  string
		want   session.Identity
	}{
		{name: "anonymous", want: session.Guest()},
		{name: "not a number", userID: "abc", want: session.Guest()},
		{name: "zero", userID: "0", want: session.Guest()},
		{name: "negative", userID: "-5", want: session.Guest()},
		{name: "user without roles", userID: "7", want: session.Identity{UserID: 7}},
		{
			name:   "user with roles",
			userID: " 7 ",
			roles:  "customer, ,admin",
			want:   session.Identity{UserID: 7, Roles: []string{"customer", "admin"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != "" {
				req.Header.Set(middlewares.HeaderUserID, tt.userID)
			}
			if tt.roles != "" {
				req.Header.Set(middlewares.HeaderUserRoles, tt.roles)
			}
			assert.Equal(t, tt.want, middlewares.HeaderAuthenticator{}.Identity(req))
		})
	}
}

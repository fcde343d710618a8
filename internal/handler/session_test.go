package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cartkeep/internal/handler"
	"github.com/dmitrymomot/cartkeep/middlewares"
	"github.com/dmitrymomot/cartkeep/pkg/cache"
	"github.com/dmitrymomot/cartkeep/pkg/cart"
	"github.com/dmitrymomot/cartkeep/pkg/cookie"
	"github.com/dmitrymomot/cartkeep/pkg/session"
)

func newRouter(t *testing.T) (http.Handler, *cart.Repository) {
	t.Helper()

	c := cache.NewMemory[cart.Record](cache.WithCleanupInterval(0))
	t.Cleanup(func() { _ = c.Close() })
	repo := cart.NewRepository(cart.NewMemoryStore(), c)

	codec, err := cookie.NewCodec("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middlewares.CartSession(session.NewManager(repo, codec)))
	handler.NewSession(nil).Routes(r)
	return r, repo
}

func TestSession_Show(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t)

	t.Run("web guest", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/session", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var v handler.SessionView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
		assert.True(t, v.Guest)
		assert.Equal(t, string(cart.SourceNative), v.Source)
		assert.NotEmpty(t, v.Key)
		assert.True(t, v.ExpiresAt.After(v.ExpiringAt))
		assert.NotEmpty(t, rec.Result().Cookies())
	})

	t.Run("api user", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/cart/session", nil)
		req.Header.Set(middlewares.HeaderUserID, "9")
		req.Header.Set(middlewares.HeaderUserRoles, session.RoleCustomer)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var v handler.SessionView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
		assert.False(t, v.Guest)
		assert.EqualValues(t, 9, v.UserID)
		assert.EqualValues(t, 9, v.CustomerID)
		assert.Equal(t, string(cart.SourceAPI), v.Source)
		assert.Equal(t, v.Key, rec.Header().Get(middlewares.HeaderCartKey))
	})
}

func TestSession_Destroy(t *testing.T) {
	t.Parallel()

	router, repo := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/session", nil))
	var v handler.SessionView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	ok, err := repo.Exists(t.Context(), v.Key)
	require.NoError(t, err)
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodDelete, "/cart/session", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	ok, err = repo.Exists(t.Context(), v.Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	handler.NewSession(nil).Routes(r)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, "/cart/session", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}
}

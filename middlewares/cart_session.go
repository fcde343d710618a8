package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/cartkeep/pkg/cookie"
	"github.com/dmitrymomot/cartkeep/pkg/logger"
	"github.com/dmitrymomot/cartkeep/pkg/session"
)

// Cart session headers of the headless flow.
const (
	HeaderCartKey        = "Cart-Key"
	HeaderCustomerID     = "Customer-ID"
	HeaderCartExpiring   = "Cart-Expiring"
	HeaderCartExpiration = "Cart-Expiration"
)

// DefaultCartCookie is the cookie name of the web flow.
const DefaultCartCookie = "cart_session"

type cartSessionConfig struct {
	auth       Authenticator
	cookies    *cookie.Manager
	logger     *slog.Logger
	cookieName string
}

// CartSessionOption configures CartSession.
type CartSessionOption func(*cartSessionConfig)

// WithAuthenticator sets the identity source. Default: HeaderAuthenticator{}.
func WithAuthenticator(a Authenticator) CartSessionOption {
	return func(cfg *cartSessionConfig) {
		if a != nil {
			cfg.auth = a
		}
	}
}

// WithCookieManager sets cookie attributes (domain, Secure...).
func WithCookieManager(m *cookie.Manager) CartSessionOption {
	return func(cfg *cartSessionConfig) {
		if m != nil {
			cfg.cookies = m
		}
	}
}

// WithCookieName sets the cart cookie name.
func WithCookieName(name string) CartSessionOption {
	return func(cfg *cartSessionConfig) {
		if name != "" {
			cfg.cookieName = name
		}
	}
}

// WithCartSessionLogger sets the logger for persistence failures.
func WithCartSessionLogger(l *slog.Logger) CartSessionOption {
	return func(cfg *cartSessionConfig) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// CartSession resolves the cart session of every request and makes it
// available through session.FromContext.
//
// The session cookie (web flow) or the Cart-* response headers (headless
// flow) are written just before the response starts, so handlers may still
// Destroy or Forget the session. After the handler returns, the session is
// saved if dirty. Persistence failures are logged, never surfaced to the
// client.
func CartSession(m *session.Manager, opts ...CartSessionOption) func(http.Handler) http.Handler {
	if m == nil {
		panic(ErrNilSessionManager)
	}

	cfg := &cartSessionConfig{
		auth:       HeaderAuthenticator{},
		cookies:    cookie.New(),
		logger:     logger.NewNope(),
		cookieName: DefaultCartCookie,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := buildSessionRequest(r, cfg)
			sess := m.Resolve(r.Context(), req)

			rw := newResponseWriter(w)
			rw.OnBeforeWrite(func() {
				if req.API {
					writeCartHeaders(rw.Header(), sess)
					return
				}
				writeCartCookie(rw, cfg, m, sess)
			})

			next.ServeHTTP(rw, r.WithContext(session.WithContext(r.Context(), sess)))
			rw.Commit()

			// The client may be gone; the cart must still be stored.
			ctx := context.WithoutCancel(r.Context())
			ctx = session.WithContext(ctx, sess)
			if err := m.Save(ctx, sess); err != nil {
				if errors.Is(err, session.ErrPersistenceSkipped) {
					cfg.logger.InfoContext(ctx, "cart not persisted", slog.String("reason", err.Error()))
					return
				}
				cfg.logger.ErrorContext(ctx, "cart save failed", slog.String("error", err.Error()))
			}
		})
	}
}

func buildSessionRequest(r *http.Request, cfg *cartSessionConfig) session.Request {
	req := session.Request{
		API:  cfg.auth.IsAPIRequest(r),
		User: cfg.auth.Identity(r),
	}
	if !req.API {
		req.Cookie, _ = cfg.cookies.Get(r, cfg.cookieName)
		return req
	}

	req.CartKey = strings.TrimSpace(r.Header.Get(HeaderCartKey))
	if v := strings.TrimSpace(r.Header.Get(HeaderCustomerID)); v != "" {
		if cid, err := strconv.ParseInt(v, 10, 64); err == nil && cid > 0 {
			req.CustomerID = cid
		}
	}
	return req
}

func writeCartHeaders(h http.Header, sess *session.Context) {
	if sess.Cookie() == session.CookieClear {
		h.Del(HeaderCartKey)
		h.Del(HeaderCartExpiring)
		h.Del(HeaderCartExpiration)
		return
	}
	h.Set(HeaderCartKey, sess.Key)
	h.Set(HeaderCartExpiring, strconv.FormatInt(sess.ExpiringAt.Unix(), 10))
	h.Set(HeaderCartExpiration, strconv.FormatInt(sess.ExpiresAt.Unix(), 10))
}

func writeCartCookie(w http.ResponseWriter, cfg *cartSessionConfig, m *session.Manager, sess *session.Context) {
	switch sess.Cookie() {
	case session.CookieSet:
		cfg.cookies.Set(w, cfg.cookieName, m.EncodeCookie(sess), sess.ExpiresAt)
	case session.CookieClear:
		cfg.cookies.Delete(w, cfg.cookieName)
	case session.CookieKeep:
	}
}

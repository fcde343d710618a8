// Package middlewares provides the net/http middleware of the cart service.
// All of them have the func(http.Handler) http.Handler shape and plug into
// chi or any other router.
//
// # Cart session
//
// CartSession resolves the cart of every request through session.Manager
// and stores it in the request context. The web flow carries the cart in a
// signed cookie; the headless flow reads the Cart-Key and Customer-ID
// request headers and answers with Cart-Key, Cart-Expiring and
// Cart-Expiration. The session is saved after the handler returns.
//
//	r := chi.NewRouter()
//	r.Use(
//	    middlewares.RequestID(),
//	    middlewares.Recover(middlewares.WithRecoverLogger(log)),
//	    middlewares.CartSession(sessions,
//	        middlewares.WithAuthenticator(middlewares.HeaderAuthenticator{}),
//	        middlewares.WithCookieManager(cookie.New(cookie.WithSecure(true))),
//	        middlewares.WithCartSessionLogger(log),
//	    ),
//	)
//
// Handlers then read the cart with session.FromContext.
//
// # Request ID
//
// RequestID assigns a ULID to each request unless an upstream
// X-Request-ID is present. Pass RequestIDExtractor to logger.New to get
// request_id on every log line.
//
// # Recover
//
// Recover logs handler panics with their stack and answers 500.
package middlewares

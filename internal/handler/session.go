// Package handler holds the HTTP endpoints of cartkeep.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cartkeep/pkg/logger"
	"github.com/dmitrymomot/cartkeep/pkg/session"
)

// SessionView is the JSON shape of a cart session.
type SessionView struct {
	ExpiringAt time.Time                  `json:"expiring_at"`
	ExpiresAt  time.Time                  `json:"expires_at"`
	Data       map[string]json.RawMessage `json:"data"`
	Key        string                     `json:"cart_key"`
	Source     string                     `json:"source"`
	UserID     int64                      `json:"user_id"`
	CustomerID int64                      `json:"customer_id"`
	Guest      bool                       `json:"guest"`
}

// Session exposes the resolved cart session. It expects
// middlewares.CartSession in front of it.
type Session struct {
	logger *slog.Logger
}

// NewSession creates the handler. A nil logger discards.
func NewSession(l *slog.Logger) *Session {
	if l == nil {
		l = logger.NewNope()
	}
	return &Session{logger: l}
}

// Routes mounts GET and DELETE on /cart/session and /api/cart/session.
func (h *Session) Routes(r chi.Router) {
	for _, prefix := range []string{"/cart", "/api/cart"} {
		r.Get(prefix+"/session", h.Show)
		r.Delete(prefix+"/session", h.Destroy)
	}
}

// Show returns the current session.
func (h *Session) Show(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "cart session unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

// Destroy deletes the cart and ends the session, the logout path.
func (h *Session) Destroy(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "cart session unavailable", http.StatusInternalServerError)
		return
	}
	if err := sess.Destroy(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "cart destroy failed", slog.String("error", err.Error()))
		http.Error(w, "cart destroy failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func view(s *session.Context) SessionView {
	data := s.Data
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	return SessionView{
		ExpiringAt: s.ExpiringAt.UTC(),
		ExpiresAt:  s.ExpiresAt.UTC(),
		Data:       data,
		Key:        s.Key,
		Source:     string(s.Source),
		UserID:     s.UserID,
		CustomerID: s.CustomerID,
		Guest:      s.IsGuest(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

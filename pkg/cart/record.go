package cart

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Source tells which flow created a cart.
type Source string

const (
	SourceNative Source = "native"
	SourceAPI    Source = "api"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	return s == SourceNative || s == SourceAPI
}

// Record is a persisted cart session.
//
// UserID 0 marks a guest cart. CustomerID differs from UserID only when an
// operator manages the cart on a customer's behalf.
type Record struct {
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	Key        string          `json:"key"`
	Source     Source          `json:"source"`
	Hash       string          `json:"hash"`
	Value      json.RawMessage `json:"value"`
	UserID     int64           `json:"user_id"`
	CustomerID int64           `json:"customer_id"`
}

// IsGuest reports whether the cart belongs to an anonymous visitor.
func (r Record) IsGuest() bool {
	return r.UserID == 0
}

// Expired reports whether the record has expired at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// TTL returns how long the record may stay cached. Never negative.
func (r Record) TTL(now time.Time) time.Duration {
	return max(0, r.ExpiresAt.Sub(now))
}

var emptyObject = json.RawMessage(`{}`)

// ContentHash returns a hex SHA-256 digest of the payload's "cart" and
// "totals" fields. Other fields do not affect it. A value that is not a JSON
// object is hashed whole.
func ContentHash(value []byte) string {
	h := sha256.New()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil {
		h.Write(value)
		return hex.EncodeToString(h.Sum(nil))
	}

	h.Write(compact(fields["cart"]))
	h.Write([]byte{0})
	h.Write(compact(fields["totals"]))
	return hex.EncodeToString(h.Sum(nil))
}

// compact strips insignificant whitespace so that stores which reformat
// JSON (postgres jsonb) produce the same digest.
func compact(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func normalizeValue(v json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(v)) == 0 {
		return emptyObject
	}
	return v
}

package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Delimiter separates payload fields in the encoded cookie.
const Delimiter = "||"

const minFields = 6

// Payload is the session state carried by the native-flow cookie.
type Payload struct {
	Expiration time.Time
	Expiring   time.Time
	CartKey    string
	UserID     int64 // owner of the cart, 0 = guest
	CustomerID int64
}

// IsGuest reports whether the cart was issued to an anonymous visitor.
func (p Payload) IsGuest() bool {
	return p.UserID == 0
}

// Codec signs and verifies cart session cookies.
//
// The signature covers the cart key and expiration. The HMAC key is
// derived per message from the server secret.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec. The secret must be at least 32 bytes.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < 32 {
		return nil, ErrBadSecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Encode serializes p as
// cart_key||expiration||expiring||hash||user_id||customer_id.
func (c *Codec) Encode(p Payload) string {
	exp := strconv.FormatInt(p.Expiration.Unix(), 10)
	return strings.Join([]string{
		p.CartKey,
		exp,
		strconv.FormatInt(p.Expiring.Unix(), 10),
		c.sign(p.CartKey, exp),
		strconv.FormatInt(p.UserID, 10),
		strconv.FormatInt(p.CustomerID, 10),
	}, Delimiter)
}

// Decode parses and verifies a cookie value. It reports false for any
// malformed or tampered value; callers treat that as "no cookie".
// Expiry is not checked here.
func (c *Codec) Decode(raw string) (Payload, bool) {
	if raw == "" {
		return Payload{}, false
	}

	parts := strings.Split(raw, Delimiter)
	if len(parts) < minFields || parts[0] == "" {
		return Payload{}, false
	}

	expected := c.sign(parts[0], parts[1])
	if !hmac.Equal([]byte(parts[3]), []byte(expected)) {
		return Payload{}, false
	}

	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Payload{}, false
	}
	expiring, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Payload{}, false
	}
	userID, err := strconv.ParseInt(parts[4], 10, 64)
	if err != nil || userID < 0 {
		return Payload{}, false
	}
	customerID, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil || customerID < 0 {
		return Payload{}, false
	}

	return Payload{
		CartKey:    parts[0],
		Expiration: time.Unix(exp, 0),
		Expiring:   time.Unix(expiring, 0),
		UserID:     userID,
		CustomerID: customerID,
	}, true
}

func (c *Codec) sign(cartKey, expiration string) string {
	msg := []byte(cartKey + "|" + expiration)

	derive := hmac.New(sha256.New, c.secret)
	derive.Write(msg)
	key := derive.Sum(nil)

	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}

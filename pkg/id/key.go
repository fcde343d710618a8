package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// CartKeyLength is the length of keys produced by NewCartKey.
const CartKeyLength = 32

// NewCartKey generates a new cart key: 32 lowercase hex characters
// holding 122 bits of crypto/rand entropy (UUIDv4 without separators).
func NewCartKey() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// IsCartKey reports whether s has the shape of a key produced by NewCartKey.
// It does not check that a cart exists for the key.
func IsCartKey(s string) bool {
	if len(s) != CartKeyLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

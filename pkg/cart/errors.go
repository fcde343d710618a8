package cart

import "errors"

var (
	ErrNotFound      = errors.New("cart: not found")
	ErrEmptyKey      = errors.New("cart: empty key")
	ErrInvalidExpiry = errors.New("cart: expiry must be after creation")
	ErrStoreFailed   = errors.New("cart: store operation failed")
)

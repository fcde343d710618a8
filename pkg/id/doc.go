// Package id generates identifiers for carts and requests.
//
// [NewCartKey] returns an opaque, cryptographically random cart key. Cart keys
// carry no identity information: a key never encodes who owns the cart, so
// the owner can change (guest to registered user) without the key leaking it.
//
// [NewULID] returns a time-sortable identifier used for request tracing.
//
//	key := id.NewCartKey() // "9f1c0e6b4a2d4b7e8c3f5a6d7e8f9a0b"
//	rid := id.NewULID()    // "01HZX3Q9C8M2T6V0Y4B7N1K5RD"
package id

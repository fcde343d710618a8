// Package cookie reads, writes and signs the cart session cookie.
//
// [Manager] applies shared attributes (path, domain, Secure, HttpOnly,
// SameSite) to every cookie it writes. [Codec] turns a [Payload] into the
// signed cookie value and back:
//
//	codec, err := cookie.NewCodec(os.Getenv("CART_COOKIE_SECRET"))
//	if err != nil {
//	    return err
//	}
//	value := codec.Encode(cookie.Payload{
//	    CartKey:    key,
//	    Expiration: now.Add(48 * time.Hour),
//	    Expiring:   now.Add(47 * time.Hour),
//	})
//
//	p, ok := codec.Decode(value) // ok is false for malformed or tampered values
//
// The encoded value is six fields joined by [Delimiter]:
// cart key, expiration (unix seconds), expiring (unix seconds), HMAC-SHA256
// hex digest, owning user id and customer id. Extra trailing fields are
// ignored. Decode never returns an error: a bad cookie is the same as no
// cookie.
//
// # Errors
//
//   - [ErrNotFound]: cookie does not exist
//   - [ErrBadSecret]: secret shorter than 32 bytes
package cookie

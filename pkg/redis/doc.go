// Package redis opens go-redis clients for the cart cache.
//
// [Open] validates the URL scheme, applies pool and timeout options and pings
// the server with retries. [Healthcheck] and [Shutdown] adapt the client to
// readiness probes and shutdown hooks.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"), redis.WithIOTimeout(500*time.Millisecond))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Errors are wrapped with [errors.Join]; check them with [errors.Is]:
//
//   - [ErrEmptyConnectionURL]
//   - [ErrFailedToParseURL]
//   - [ErrConnectionFailed]
//   - [ErrHealthcheckFailed]
package redis

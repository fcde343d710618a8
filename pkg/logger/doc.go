// Package logger builds the service's structured loggers on log/slog.
//
// Every logger is wrapped in a [ContextHandler] that pulls
// request-scoped attributes out of the context on each call. The HTTP layer
// contributes request_id and the session layer contributes cart_key:
//
//	log := logger.New(
//	    logger.Config{Level: logger.ParseLevel("debug")},
//	    middlewares.RequestIDExtractor(),
//	    session.LogExtractor(),
//	)
//	log.InfoContext(ctx, "cart saved")
//	// {"level":"INFO","msg":"cart saved","request_id":"01J...","cart_key":"9f0c..."}
//
// [NewWithSentry] additionally ships warnings to Sentry as logs and errors
// as issues, through github.com/getsentry/sentry-go/slog. With an empty DSN
// it behaves like [New]. Register [FlushSentry] as a shutdown hook.
//
// [NewNope] is the default logger of every component in this module.
package logger

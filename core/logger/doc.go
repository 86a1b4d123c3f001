// Package logger builds slog loggers for livefeed services and provides
// attribute helpers so log lines share the same keys everywhere.
//
// Create a logger once at startup and pass it down through WithLogger
// options:
//
//	log := logger.New(
//		logger.WithProduction("livefeed"),
//		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	)
//
//	hub := realtime.New(realtime.WithLogger(log))
//
// Development loggers write text to stdout at debug level, production and
// staging loggers write JSON at info level.
//
// Attribute helpers return an empty slog.Attr for zero inputs, which slog
// drops, so callers never need nil checks:
//
//	log.Warn("subscriber dropped",
//		logger.Component("realtime"),
//		logger.SubscriberID(sub.ID()),
//		logger.Reason("queue_full"),
//		logger.Error(err),
//	)
//
// Context values can be lifted into every record with WithContextValue or
// WithContextExtractors; the request ID middleware relies on this.
package logger

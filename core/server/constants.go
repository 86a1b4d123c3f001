package server

import "time"

const (
	// DefaultReadTimeout bounds reading a request, body included.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout bounds writing a response. Zero disables it:
	// event streams keep their response open for the whole session and not
	// every router exposes the connection deadline to handlers.
	DefaultWriteTimeout time.Duration = 0

	// DefaultIdleTimeout is the keep-alive timeout for idle connections.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is how long Stop waits for handlers before
	// closing connections.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes is the default maximum size of request headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)

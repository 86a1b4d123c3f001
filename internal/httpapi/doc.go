// Package httpapi mounts the livefeed HTTP surface on a gin engine: the
// public and admin event streams, the booking API, manual broadcasts,
// health probes and Prometheus metrics.
//
// Admin routes live under /admin and require a bearer token. Browsers
// cannot set headers on EventSource or WebSocket requests, so streams
// also accept the token in the access_token query parameter.
package httpapi

// Package health provides gin handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - NoContent: Returns 204 for minimal overhead
//
// Usage:
//
//	r.GET("/health/live", health.Liveness)
//	r.GET("/health/ready", health.Readiness(log, pg.Healthcheck(pool)))
//
// Dependency checks follow the func(context.Context) error signature and
// share a DefaultCheckTimeout deadline.
package health

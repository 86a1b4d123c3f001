// Package redis opens go-redis clients with connection verification.
//
// Connect validates the URL (redis:// or rediss://), then pings the server
// with exponential backoff until it answers or cfg.ConnectTimeout passes:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 30 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Healthcheck wraps PING for readiness probes. Failures wrap the sentinel
// errors in errors.go and can be matched with errors.Is.
package redis

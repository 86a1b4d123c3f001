// Package realtime pushes server-originated events to long-lived client
// connections, partitioned by audience.
//
// A Hub owns everything: the subscriber Registry, a lazily started
// heartbeat, and the fan-out entry point. Build one at startup and share it
// between the route layer and event producers:
//
//	hub := realtime.NewFromConfig(cfg.Realtime,
//		realtime.WithLogger(log),
//		realtime.WithMetrics(realtime.MustNewMetrics(prometheus.DefaultRegisterer)),
//	)
//
//	r.GET("/events", gin.WrapH(hub.Handler(realtime.AudiencePublic)))
//	admin.GET("/events", gin.WrapH(hub.Handler(realtime.AudienceAuth)))
//
//	hub.Broadcast("booking.created", booking, realtime.TargetAuth)
//
// # Audiences and targets
//
// Subscribers are AudiencePublic or AudienceAuth, fixed at registration.
// Broadcasts aim at TargetAll, TargetAuth or TargetPublic:
//
//   - TargetAll reaches every subscriber.
//   - TargetAuth reaches auth subscribers only.
//   - TargetPublic reaches every subscriber, auth ones included.
//
// # Wire format
//
// Each event is one text/event-stream block:
//
//	event: booking.created
//	data: {"event":"booking.created","payload":{"id":1},"at":"2026-10-18T09:30:00.000Z"}
//
// The first frame on a stream is "connected" with data
// {"connectedAt":...,"audience":...}; heartbeats are "ping" with data
// {"at":...}. WebSocket subscribers get the same data wrapped as
// {"event":...,"data":...} text messages.
//
// # Delivery
//
// Broadcast never blocks and never fails from the caller's point of view.
// Every subscriber has a bounded queue drained by its own goroutine, so
// frames for one subscriber keep their Broadcast order. A subscriber whose
// write fails, or whose queue is full, is removed from the registry and its
// connection closed; the rest are unaffected.
//
// The heartbeat pings all subscribers every 30 seconds by default. It is
// armed by the first registration and disarms itself on the first tick that
// finds no subscribers.
package realtime

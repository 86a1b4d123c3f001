// Package redisrelay fans realtime events out across instances through
// Redis pub/sub.
//
// Producers broadcast through a Publisher instead of the hub. Every
// instance runs a Relay on the same channel that replays each message
// into its local hub, the publishing instance included:
//
//	pub := redisrelay.NewPublisher(client, redisrelay.WithFallback(hub))
//	relay := redisrelay.NewRelay(client, pub.Channel(), hub, log)
//	g.Go(pub.Run(ctx))
//	g.Go(relay.Run(ctx))
//
//	bookings := booking.NewService(store, pub)
//
// Publisher.Broadcast never waits on Redis: events are queued and
// published by Publisher.Run in call order. When the queue is full or a
// PUBLISH fails the event goes to the fallback broadcaster instead.
//
// Payloads are encoded once by the publisher and forwarded as raw JSON.
package redisrelay

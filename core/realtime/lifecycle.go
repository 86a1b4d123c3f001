package realtime

import (
	"github.com/dmitrymomot/livefeed/core/logger"
)

// Register adds a subscriber for sink. The connected frame is queued ahead
// of any broadcast, the subscriber's writer is started and the heartbeat is
// armed if it was idle. Register cannot fail.
//
// Transport handlers normally use ServeSSE or ServeWebSocket, which call
// Register and Unregister around the connection.
func (h *Hub) Register(sink Sink, audience Audience) *Subscriber {
	connected, _ := NewFrame(EventConnected, ConnectedPayload{
		ConnectedAt: Timestamp(h.now()),
		Audience:    audience,
	})

	sub := h.registry.register(sink, audience, connected)
	h.metrics.subscriberAdded(audience)

	if h.heartbeat.start() {
		h.logger.Debug("heartbeat started", logger.Component("realtime"))
	}

	h.logger.Debug("subscriber registered",
		logger.Component("realtime"),
		logger.SubscriberID(sub.ID()),
		logger.Audience(string(audience)),
	)
	return sub
}

// Unregister removes sub and closes its connection. Calling it more than
// once, or after a failed write already removed sub, is a no-op.
func (h *Hub) Unregister(sub *Subscriber) {
	if sub == nil {
		return
	}
	if !h.registry.remove(sub.ID(), ReasonDisconnect, nil) {
		sub.close()
	}
}

// Close removes every subscriber, which ends their streams. Call it when
// the server begins shutting down; new registrations are still accepted.
func (h *Hub) Close() {
	n := 0
	h.registry.ForEach(func(sub *Subscriber) {
		if h.registry.remove(sub.ID(), ReasonShutdown, nil) {
			n++
		}
	})
	h.logger.Info("realtime hub closed",
		logger.Component("realtime"),
		logger.Count("subscribers", n),
	)
}

package realtime

import (
	"github.com/dmitrymomot/livefeed/core/logger"
)

// Broadcaster publishes domain events to stream subscribers.
// Implementations never block on, or report failures of, individual
// subscriber connections.
type Broadcaster interface {
	Broadcast(name string, payload any, target Target)
}

var _ Broadcaster = (*Hub)(nil)

// Broadcast sends one event to every subscriber matching target. The
// payload is encoded once and the same frame is queued for each match.
// An empty target means TargetAll and a nil payload is sent as null.
//
// Events that cannot be encoded are logged and dropped.
func (h *Hub) Broadcast(name string, payload any, target Target) {
	if target == "" {
		target = TargetAll
	}

	frame, err := NewFrame(name, Envelope{
		Event:   name,
		Payload: payload,
		At:      Timestamp(h.now()),
	})
	if err != nil {
		h.logger.Warn("broadcast dropped",
			logger.Component("realtime"),
			logger.Event(name),
			logger.Target(target.String()),
			logger.Error(err),
		)
		return
	}

	h.metrics.broadcast(target)
	n := h.fanOut(frame, target)
	h.logger.Debug("broadcast",
		logger.Component("realtime"),
		logger.Event(name),
		logger.Target(target.String()),
		logger.Count("recipients", n),
	)
}

func (h *Hub) ping() {
	frame, err := NewFrame(EventPing, PingPayload{At: Timestamp(h.now())})
	if err != nil {
		return
	}
	h.fanOut(frame, TargetAll)
}

func (h *Hub) fanOut(frame Frame, target Target) int {
	n := 0
	h.registry.ForEach(func(sub *Subscriber) {
		if !target.Matches(sub.Audience()) {
			return
		}
		if h.registry.Deliver(sub, frame) {
			n++
		}
	})
	return n
}

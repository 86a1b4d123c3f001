package redisrelay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/realtime"
)

// Relay subscribes to the pub/sub channel and replays every message into
// a local broadcaster.
type Relay struct {
	client  PubSubClient
	channel string
	local   realtime.Broadcaster
	logger  *slog.Logger
	ready   chan struct{}
}

// NewRelay creates a relay that feeds local. An empty channel means
// DefaultChannel; a nil logger discards output.
func NewRelay(client PubSubClient, channel string, local realtime.Broadcaster, log *slog.Logger) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Relay{
		client:  client,
		channel: channel,
		local:   local,
		logger:  log,
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the subscription is confirmed.
func (r *Relay) Ready() <-chan struct{} { return r.ready }

// Deliver decodes one pub/sub payload and broadcasts it locally.
func (r *Relay) Deliver(payload string) error {
	m, err := Decode([]byte(payload))
	if err != nil {
		return err
	}
	r.local.Broadcast(m.Event, m.Payload, m.Target)
	return nil
}

// Run returns a function for errgroup that relays messages until ctx is
// canceled.
func (r *Relay) Run(ctx context.Context) func() error {
	return func() error {
		pubsub := r.client.Subscribe(ctx, r.channel)
		defer pubsub.Close()

		if _, err := pubsub.Receive(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
		}
		close(r.ready)

		r.logger.InfoContext(ctx, "relay subscribed",
			logger.Component("redisrelay"),
			slog.String("channel", r.channel),
		)

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				r.logger.InfoContext(ctx, "relay stopped", logger.Component("redisrelay"))
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				if err := r.Deliver(msg.Payload); err != nil {
					r.logger.WarnContext(ctx, "relay message dropped",
						logger.Component("redisrelay"),
						logger.Error(err),
					)
				}
			}
		}
	}
}

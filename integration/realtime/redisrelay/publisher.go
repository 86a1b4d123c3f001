package redisrelay

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/realtime"
)

// PubSubClient is the subset of redis.UniversalClient used by the relay.
type PubSubClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// Config holds relay settings loaded from the environment.
type Config struct {
	Channel        string        `env:"REALTIME_REDIS_CHANNEL" envDefault:"livefeed:events"`
	PublishTimeout time.Duration `env:"REALTIME_REDIS_PUBLISH_TIMEOUT" envDefault:"2s"`
	QueueSize      int           `env:"REALTIME_REDIS_QUEUE_SIZE" envDefault:"256"`
}

// DefaultQueueSize is the number of events a Publisher buffers while
// Redis is slow.
const DefaultQueueSize = 256

type outbound struct {
	name    string
	payload any
	target  realtime.Target
	data    []byte
}

// Publisher implements realtime.Broadcaster on top of Redis pub/sub, so
// every instance running a Relay on the same channel delivers the event
// to its own subscribers. Broadcast only enqueues; Run performs the
// PUBLISH calls in order.
type Publisher struct {
	client    PubSubClient
	channel   string
	origin    string
	timeout   time.Duration
	queueSize int
	queue     chan outbound
	fallback  realtime.Broadcaster
	logger    *slog.Logger
}

var _ realtime.Broadcaster = (*Publisher)(nil)

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithChannel overrides DefaultChannel.
func WithChannel(channel string) PublisherOption {
	return func(p *Publisher) {
		if channel != "" {
			p.channel = channel
		}
	}
}

// WithOrigin sets the instance id stamped on published messages.
func WithOrigin(origin string) PublisherOption {
	return func(p *Publisher) {
		if origin != "" {
			p.origin = origin
		}
	}
}

// WithPublishTimeout bounds a single PUBLISH call.
func WithPublishTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithQueueSize sets how many events wait for Run before Broadcast
// hands them to the fallback instead.
func WithQueueSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithFallback sets the broadcaster used when Redis cannot be reached or
// the queue is full, usually the local hub. Without it such events are
// dropped.
func WithFallback(b realtime.Broadcaster) PublisherOption {
	return func(p *Publisher) {
		p.fallback = b
	}
}

// WithPublisherLogger sets the logger.
func WithPublisherLogger(log *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if log != nil {
			p.logger = log
		}
	}
}

// NewPublisher creates a Publisher.
func NewPublisher(client PubSubClient, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client:    client,
		channel:   DefaultChannel,
		origin:    uuid.NewString(),
		timeout:   2 * time.Second,
		queueSize: DefaultQueueSize,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = make(chan outbound, p.queueSize)
	return p
}

// NewPublisherFromConfig creates a Publisher from cfg.
func NewPublisherFromConfig(client PubSubClient, cfg Config, opts ...PublisherOption) *Publisher {
	base := []PublisherOption{
		WithChannel(cfg.Channel),
		WithPublishTimeout(cfg.PublishTimeout),
		WithQueueSize(cfg.QueueSize),
	}
	return NewPublisher(client, append(base, opts...)...)
}

// Origin returns the id stamped on messages from this publisher.
func (p *Publisher) Origin() string { return p.origin }

// Channel returns the pub/sub channel.
func (p *Publisher) Channel() string { return p.channel }

// Broadcast queues the event for publishing and returns without waiting
// for Redis. Encoding failures are logged and the event is dropped; a full
// queue sends the event to the fallback broadcaster.
func (p *Publisher) Broadcast(name string, payload any, target realtime.Target) {
	data, err := encode(p.origin, name, payload, target)
	if err != nil {
		p.logger.Warn("broadcast dropped",
			logger.Component("redisrelay"),
			logger.Event(name),
			logger.Error(err),
		)
		return
	}

	select {
	case p.queue <- outbound{name: name, payload: payload, target: target, data: data}:
	default:
		p.logger.Warn("publish queue full",
			logger.Component("redisrelay"),
			logger.Event(name),
			logger.Count("queue_size", p.queueSize),
		)
		p.local(name, payload, target)
	}
}

// Run returns a function for errgroup that publishes queued events until
// ctx is canceled. Events still queued at that point are dropped.
func (p *Publisher) Run(ctx context.Context) func() error {
	return func() error {
		for {
			select {
			case <-ctx.Done():
				if n := len(p.queue); n > 0 {
					p.logger.Warn("publisher stopped with queued events",
						logger.Component("redisrelay"),
						logger.Count("queued", n),
					)
				}
				return nil
			case m := <-p.queue:
				p.publish(ctx, m)
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, m outbound) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, m.data).Err(); err != nil {
		p.logger.Error("publish failed",
			logger.Component("redisrelay"),
			logger.Event(m.name),
			logger.Target(m.target.String()),
			logger.Error(err),
		)
		p.local(m.name, m.payload, m.target)
	}
}

func (p *Publisher) local(name string, payload any, target realtime.Target) {
	if p.fallback != nil {
		p.fallback.Broadcast(name, payload, target)
	}
}

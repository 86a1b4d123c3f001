package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/livefeed/core/logger"
)

// Config holds hub settings loaded from the environment.
type Config struct {
	HeartbeatInterval time.Duration `env:"REALTIME_HEARTBEAT_INTERVAL" envDefault:"30s"`
	QueueSize         int           `env:"REALTIME_QUEUE_SIZE" envDefault:"64"`
}

// Hub is the per-process fan-out point. It owns the subscriber registry
// and the heartbeat, registers connections and broadcasts events to them.
// Construct one with New at startup and share it by reference.
type Hub struct {
	registry  *Registry
	heartbeat *heartbeat

	logger   *slog.Logger
	metrics  *Metrics
	now      func() time.Time
	upgrader websocket.Upgrader

	interval  time.Duration
	queueSize int
	newID     func() string
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.logger = log
		}
	}
}

// WithHeartbeatInterval sets the ping period.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.interval = d
		}
	}
}

// WithQueueSize sets how many frames may wait for one subscriber before it
// is considered stalled.
func WithQueueSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// WithIDGenerator replaces the uuid v4 subscriber id generator.
func WithIDGenerator(fn func() string) Option {
	return func(h *Hub) {
		h.newID = fn
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

// WithCheckOrigin sets the WebSocket origin policy. The default rejects
// cross-origin upgrades.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// New creates a Hub. The heartbeat stays idle until the first subscriber
// registers.
func New(opts ...Option) *Hub {
	h := &Hub{
		logger:    logger.Discard(),
		now:       time.Now,
		interval:  DefaultHeartbeatInterval,
		queueSize: DefaultQueueSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	h.registry = NewRegistry(
		WithRegistryQueueSize(h.queueSize),
		WithRegistryIDGenerator(h.newID),
		WithRemoveHook(h.removed),
		WithWriteHook(func(*Subscriber, Frame) { h.metrics.frameDelivered() }),
	)
	h.heartbeat = newHeartbeat(h.interval, h.ping, func() bool { return h.registry.Len() == 0 })
	return h
}

// NewFromConfig creates a Hub from cfg. opts override config values.
func NewFromConfig(cfg Config, opts ...Option) *Hub {
	base := []Option{
		WithHeartbeatInterval(cfg.HeartbeatInterval),
		WithQueueSize(cfg.QueueSize),
	}
	return New(append(base, opts...)...)
}

// Subscribers returns the number of open subscribers.
func (h *Hub) Subscribers() int {
	return h.registry.Len()
}

// SubscribersByAudience returns the number of open subscribers with
// audience a.
func (h *Hub) SubscribersByAudience(a Audience) int {
	return h.registry.Count(a)
}

// HeartbeatActive reports whether the heartbeat ticker is armed.
func (h *Hub) HeartbeatActive() bool {
	return h.heartbeat.active()
}

func (h *Hub) removed(sub *Subscriber, reason string, cause error) {
	h.metrics.subscriberRemoved(sub.Audience(), reason)
	h.logger.Debug("subscriber removed",
		logger.Component("realtime"),
		logger.SubscriberID(sub.ID()),
		logger.Audience(string(sub.Audience())),
		logger.Reason(reason),
		logger.Error(cause),
	)
}

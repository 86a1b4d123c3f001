package realtime

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Removal reasons reported to the remove hook and metrics.
const (
	ReasonRemoved     = "removed"
	ReasonDisconnect  = "disconnect"
	ReasonWriteFailed = "write_failed"
	ReasonStalled     = "stalled"
	ReasonShutdown    = "shutdown"
)

// DefaultQueueSize is the number of frames buffered per subscriber.
const DefaultQueueSize = 64

// Registry owns the live set of subscribers. Safe for concurrent use.
//
// Presence in the registry is the only liveness record: a subscriber is
// gone once it is removed, and removal always closes it.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber

	newID     func() string
	queueSize int
	onRemove  func(sub *Subscriber, reason string, cause error)
	onWrite   func(sub *Subscriber, f Frame)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryQueueSize sets the per-subscriber frame buffer.
func WithRegistryQueueSize(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// WithRegistryIDGenerator replaces the uuid v4 id generator.
// The generator must never return the same id twice.
func WithRegistryIDGenerator(fn func() string) RegistryOption {
	return func(r *Registry) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithRemoveHook is called once per removed subscriber, after it is closed.
func WithRemoveHook(fn func(sub *Subscriber, reason string, cause error)) RegistryOption {
	return func(r *Registry) {
		r.onRemove = fn
	}
}

// WithWriteHook is called from the writer goroutine after each frame that
// reached the sink.
func WithWriteHook(fn func(sub *Subscriber, f Frame)) RegistryOption {
	return func(r *Registry) {
		r.onWrite = fn
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		subs:      make(map[string]*Subscriber),
		newID:     func() string { return uuid.New().String() },
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register inserts a subscriber for sink and returns its fresh id.
func (r *Registry) Register(sink Sink, audience Audience) string {
	return r.register(sink, audience).ID()
}

// register queues first and opens the subscriber before it becomes
// visible, so those frames precede anything a concurrent broadcast
// delivers and broadcasts only ever see open subscribers.
func (r *Registry) register(sink Sink, audience Audience, first ...Frame) *Subscriber {
	size := r.queueSize
	if len(first) > size {
		size = len(first)
	}
	sub := newSubscriber(r.newID(), sink, audience, size)
	for _, f := range first {
		_ = sub.enqueue(f)
	}

	sub.open()

	r.mu.Lock()
	r.subs[sub.id] = sub
	r.mu.Unlock()

	go sub.run(r.onWrite, r.writeFailed)
	return sub
}

// Remove deletes and closes the subscriber with the given id.
// It reports whether an entry was removed; unknown ids are a no-op.
func (r *Registry) Remove(id string) bool {
	return r.remove(id, ReasonRemoved, nil)
}

func (r *Registry) remove(id, reason string, cause error) bool {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	sub.close()
	if r.onRemove != nil {
		r.onRemove(sub, reason, cause)
	}
	return true
}

// ForEach calls visit for every subscriber registered when ForEach was
// called. visit may remove subscribers, including the one it is given.
func (r *Registry) ForEach(visit func(sub *Subscriber)) {
	r.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		snapshot = append(snapshot, sub)
	}
	r.mu.RUnlock()

	for _, sub := range snapshot {
		visit(sub)
	}
}

// Deliver queues f for sub. A subscriber that cannot take the frame is
// removed; the failure is never returned to the caller.
func (r *Registry) Deliver(sub *Subscriber, f Frame) bool {
	err := sub.enqueue(f)
	if err == nil {
		return true
	}

	reason := ReasonStalled
	if errors.Is(err, ErrSubscriberClosed) {
		reason = ReasonRemoved
	}
	r.remove(sub.id, reason, err)
	return false
}

func (r *Registry) writeFailed(sub *Subscriber, err error) {
	r.remove(sub.id, ReasonWriteFailed, err)
}

// Get returns the subscriber with the given id.
func (r *Registry) Get(id string) (*Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[id]
	return sub, ok
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Count returns the number of registered subscribers with audience a.
func (r *Registry) Count(a Audience) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, sub := range r.subs {
		if sub.audience == a {
			n++
		}
	}
	return n
}

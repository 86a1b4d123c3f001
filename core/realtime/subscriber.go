package realtime

import (
	"sync"
	"sync/atomic"
)

// Sink is the writable end of one long-lived connection.
// A Sink is owned by exactly one Subscriber; only that subscriber's writer
// goroutine calls WriteFrame. Close may be called from any goroutine and
// must unblock a pending WriteFrame.
type Sink interface {
	WriteFrame(f Frame) error
	Close() error
}

// State is the lifecycle stage of a Subscriber.
type State int32

const (
	StateRegistering State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRegistering:
		return "registering"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Subscriber is one registered connection awaiting pushed events.
type Subscriber struct {
	id       string
	audience Audience
	sink     Sink

	queue      chan Frame
	state      atomic.Int32
	done       chan struct{}
	writerDone chan struct{}
	closeOnce  sync.Once
}

func newSubscriber(id string, sink Sink, audience Audience, queueSize int) *Subscriber {
	return &Subscriber{
		id:         id,
		audience:   audience,
		sink:       sink,
		queue:      make(chan Frame, queueSize),
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// ID returns the subscriber id. Ids are never reused.
func (s *Subscriber) ID() string { return s.id }

// Audience returns the audience given at registration.
func (s *Subscriber) Audience() Audience { return s.audience }

// State returns the current lifecycle state.
func (s *Subscriber) State() State { return State(s.state.Load()) }

// Done is closed once the subscriber reaches StateClosed.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Stopped is closed after the writer goroutine has returned; the sink is
// not touched by the subscriber afterwards.
func (s *Subscriber) Stopped() <-chan struct{} { return s.writerDone }

func (s *Subscriber) open() {
	s.state.CompareAndSwap(int32(StateRegistering), int32(StateOpen))
}

// enqueue never blocks. A full queue means the connection stopped
// draining and is reported as ErrQueueFull.
func (s *Subscriber) enqueue(f Frame) error {
	select {
	case <-s.done:
		return ErrSubscriberClosed
	default:
	}

	select {
	case s.queue <- f:
		return nil
	default:
		return ErrQueueFull
	}
}

// close moves the subscriber to StateClosed and closes the sink.
// Only the first call has an effect; sink close errors are discarded
// because the connection is treated as gone either way.
func (s *Subscriber) close() bool {
	closed := false
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
		_ = s.sink.Close()
		closed = true
	})
	return closed
}

// run drains the queue into the sink until the subscriber closes or a
// write fails. onFail is called at most once, with the write error.
func (s *Subscriber) run(onWrite func(*Subscriber, Frame), onFail func(*Subscriber, error)) {
	defer close(s.writerDone)

	for {
		select {
		case <-s.done:
			return
		case f := <-s.queue:
			select {
			case <-s.done:
				return
			default:
			}

			if err := s.sink.WriteFrame(f); err != nil {
				onFail(s, err)
				return
			}
			if onWrite != nil {
				onWrite(s, f)
			}
		}
	}
}

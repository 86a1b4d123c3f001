package realtime

import (
	"sync"
	"time"
)

// DefaultHeartbeatInterval keeps idle streams under common proxy timeouts.
const DefaultHeartbeatInterval = 30 * time.Second

// heartbeat pings every subscriber on an interval while at least one is
// registered. It is armed lazily by start and disarms itself on the first
// tick that finds the registry empty.
//
// The loop runs on a plain goroutine, which never holds the process open.
type heartbeat struct {
	interval time.Duration
	tick     func()
	empty    func() bool

	mu     sync.Mutex
	ticker *time.Ticker // nil while idle
}

func newHeartbeat(interval time.Duration, tick func(), empty func() bool) *heartbeat {
	return &heartbeat{
		interval: interval,
		tick:     tick,
		empty:    empty,
	}
}

// start arms the ticker unless it is already running.
func (hb *heartbeat) start() bool {
	hb.mu.Lock()
	defer hb.mu.Unlock()

	if hb.ticker != nil {
		return false
	}
	t := time.NewTicker(hb.interval)
	hb.ticker = t
	go hb.loop(t)
	return true
}

func (hb *heartbeat) active() bool {
	hb.mu.Lock()
	defer hb.mu.Unlock()
	return hb.ticker != nil
}

func (hb *heartbeat) loop(t *time.Ticker) {
	for range t.C {
		hb.tick()
		if hb.disarmIfEmpty(t) {
			return
		}
	}
}

// disarmIfEmpty checks emptiness and clears the handle under one lock, so
// a registration racing with the check either keeps the ticker alive or
// finds it cleared and arms a new one.
func (hb *heartbeat) disarmIfEmpty(t *time.Ticker) bool {
	hb.mu.Lock()
	defer hb.mu.Unlock()

	if !hb.empty() {
		return false
	}
	t.Stop()
	if hb.ticker == t {
		hb.ticker = nil
	}
	return true
}

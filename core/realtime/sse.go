package realtime

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/livefeed/core/logger"
)

// sseSink writes frames to an HTTP response held open by ServeSSE.
type sseSink struct {
	w      http.ResponseWriter
	rc     *http.ResponseController
	closed atomic.Bool
}

func (s *sseSink) WriteFrame(f Frame) error {
	if _, err := f.WriteTo(s.w); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Close expires the write deadline so a write stuck on a client that
// stopped reading returns immediately. The handler returning then ends
// the response.
func (s *sseSink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.rc.SetWriteDeadline(time.Now())
}

// Handler returns an http.Handler streaming events to subscribers of the
// given audience. The caller decides the audience; authenticate the route
// before mounting an AudienceAuth handler.
func (h *Hub) Handler(audience Audience) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeSSE(w, r, audience)
	})
}

// ServeSSE turns the response into a server-sent events stream and keeps
// it registered until the client goes away or a write fails.
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request, audience Audience) {
	if !canFlush(w) {
		h.logger.ErrorContext(r.Context(), "sse handshake failed",
			logger.Component("realtime"),
			logger.Error(ErrStreamingUnsupported),
		)
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	// Streams outlive the server WriteTimeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.DebugContext(r.Context(), "sse write deadline not cleared",
			logger.Component("realtime"),
			logger.Error(err),
		)
	}

	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return
	}

	sub := h.Register(&sseSink{w: w, rc: rc}, audience)

	select {
	case <-r.Context().Done():
	case <-sub.Done():
	}

	h.Unregister(sub)
	// The ResponseWriter must not be used once this handler returns.
	<-sub.Stopped()
}

func canFlush(w http.ResponseWriter) bool {
	for {
		switch t := w.(type) {
		case http.Flusher:
			return true
		case interface{ Unwrap() http.ResponseWriter }:
			w = t.Unwrap()
		default:
			return false
		}
	}
}

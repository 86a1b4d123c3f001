package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/livefeed/core/logger"
)

const (
	wsCloseGrace    = time.Second
	wsMaxReadLength = 512
)

// WSMessage is the text message sent to WebSocket subscribers for every
// frame. Data holds the same JSON as the event-stream data line.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type wsSink struct {
	conn *websocket.Conn
	once sync.Once
	err  error
}

func (s *wsSink) WriteFrame(f Frame) error {
	msg, err := json.Marshal(WSMessage{Event: f.Name, Data: f.Data})
	if err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, msg)
}

func (s *wsSink) Close() error {
	s.once.Do(func() {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(wsCloseGrace),
		)
		s.err = s.conn.Close()
	})
	return s.err
}

// WebSocketHandler returns an http.Handler serving WebSocket subscribers of
// the given audience.
func (h *Hub) WebSocketHandler(audience Audience) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWebSocket(w, r, audience)
	})
}

// ServeWebSocket upgrades the request and streams events over the
// connection. Messages from the client are read and discarded; reading is
// how a client-side close is noticed.
func (h *Hub) ServeWebSocket(w http.ResponseWriter, r *http.Request, audience Audience) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.logger.DebugContext(r.Context(), "websocket upgrade failed",
			logger.Component("realtime"),
			logger.Error(err),
		)
		return
	}

	sub := h.Register(&wsSink{conn: conn}, audience)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		conn.SetReadLimit(wsMaxReadLength)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-readDone:
	case <-sub.Done():
	case <-r.Context().Done():
	}

	h.Unregister(sub)
	<-sub.Stopped()
	<-readDone
}

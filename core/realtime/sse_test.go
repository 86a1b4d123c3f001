package realtime_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/livefeed/core/realtime"
)

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()

	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")

		switch {
		case line == "":
			if ev.name != "" || ev.data != "" {
				return ev
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func openStream(t *testing.T, ctx context.Context, url string) (*http.Response, *bufio.Reader) {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp, bufio.NewReader(resp.Body)
}

func TestServeSSE(t *testing.T) {
	t.Parallel()

	t.Run("streams_events", func(t *testing.T) {
		t.Parallel()

		hub := newTestHub()
		srv := httptest.NewServer(hub.Handler(realtime.AudienceAuth))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		resp, body := openStream(t, ctx, srv.URL)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
		assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
		assert.Equal(t, "no", resp.Header.Get("X-Accel-Buffering"))

		ev := readEvent(t, body)
		assert.Equal(t, realtime.EventConnected, ev.name)
		assert.JSONEq(t, `{"connectedAt":"2026-10-18T09:30:00.000Z","audience":"auth"}`, ev.data)
		require.Equal(t, 1, hub.Subscribers())

		hub.Broadcast("booking.created", map[string]int{"id": 7}, realtime.TargetAuth)
		ev = readEvent(t, body)
		assert.Equal(t, "booking.created", ev.name)
		assert.JSONEq(t, `{"event":"booking.created","payload":{"id":7},"at":"2026-10-18T09:30:00.000Z"}`, ev.data)
	})

	t.Run("public_stream_skips_auth_events", func(t *testing.T) {
		t.Parallel()

		hub := newTestHub()
		srv := httptest.NewServer(hub.Handler(realtime.AudiencePublic))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, body := openStream(t, ctx, srv.URL)
		assert.Equal(t, realtime.EventConnected, readEvent(t, body).name)

		hub.Broadcast("booking.created", nil, realtime.TargetAuth)
		hub.Broadcast("notice", nil, realtime.TargetPublic)
		assert.Equal(t, "notice", readEvent(t, body).name)
	})

	t.Run("client_disconnect_unregisters", func(t *testing.T) {
		t.Parallel()

		hub := newTestHub()
		srv := httptest.NewServer(hub.Handler(realtime.AudiencePublic))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		_, body := openStream(t, ctx, srv.URL)
		readEvent(t, body)
		require.Equal(t, 1, hub.Subscribers())

		cancel()
		require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)

		// Broadcasting to nobody is harmless.
		hub.Broadcast("notice", nil, realtime.TargetAll)
	})

	t.Run("dropped_connection_unregisters", func(t *testing.T) {
		t.Parallel()

		hub := newTestHub()
		srv := httptest.NewServer(hub.Handler(realtime.AudiencePublic))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, body := openStream(t, ctx, srv.URL)
		readEvent(t, body)
		require.Equal(t, 1, hub.Subscribers())

		srv.CloseClientConnections()
		require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("streaming_unsupported", func(t *testing.T) {
		t.Parallel()

		hub := newTestHub()
		w := &plainWriter{header: http.Header{}}
		hub.ServeSSE(w, httptest.NewRequest(http.MethodGet, "/events", nil), realtime.AudiencePublic)

		assert.Equal(t, http.StatusInternalServerError, w.status)
		assert.Contains(t, w.body.String(), "streaming unsupported")
		assert.Equal(t, 0, hub.Subscribers())
	})
}

// plainWriter is a ResponseWriter without Flush.
type plainWriter struct {
	header http.Header
	status int
	body   strings.Builder
}

func (w *plainWriter) Header() http.Header { return w.header }

func (w *plainWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *plainWriter) WriteHeader(code int) { w.status = code }

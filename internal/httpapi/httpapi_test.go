package httpapi_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/livefeed/core/health"
	"github.com/dmitrymomot/livefeed/core/realtime"
	"github.com/dmitrymomot/livefeed/internal/adminauth"
	"github.com/dmitrymomot/livefeed/internal/booking"
	"github.com/dmitrymomot/livefeed/internal/httpapi"
	"github.com/dmitrymomot/livefeed/pkg/jwt"
	"github.com/dmitrymomot/livefeed/pkg/ratelimiter"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testKey = "0123456789abcdef0123456789abcdef"

type call struct {
	name    string
	payload any
	target  realtime.Target
}

type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) Broadcast(name string, payload any, target realtime.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{name, payload, target})
}

func (r *recorder) all() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

type nopSink struct{}

func (nopSink) WriteFrame(realtime.Frame) error { return nil }
func (nopSink) Close() error                    { return nil }

type env struct {
	router *gin.Engine
	hub    *realtime.Hub
	rec    *recorder
	token  string
}

type envOption func(*httpapi.Deps)

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()

	tokens, err := jwt.NewFromString(testKey)
	require.NoError(t, err)
	token, err := tokens.Generate(jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "admin@example.com"},
		Role:             "admin",
	}, time.Hour)
	require.NoError(t, err)

	hub := realtime.New(realtime.WithHeartbeatInterval(time.Hour))
	t.Cleanup(hub.Close)

	rec := &recorder{}
	deps := httpapi.Deps{
		Hub:         hub,
		Broadcaster: rec,
		Bookings:    booking.NewService(booking.NewMemoryStore(), rec),
		Tokens:      tokens,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &env{
		router: httpapi.NewRouter(httpapi.Config{}, deps),
		hub:    hub,
		rec:    rec,
		token:  token,
	}
}

func (e *env) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if authed {
		r.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

const validBooking = `{"name":"Ann","email":"ann@example.com","service":"Consultation"}`

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("live", func(t *testing.T) {
		t.Parallel()
		w := newEnv(t).do(http.MethodGet, "/health/live", "", false)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ALIVE", w.Body.String())
	})

	t.Run("ready_fails_with_dependency", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, func(d *httpapi.Deps) {
			d.Checks = []health.Check{func(context.Context) error { return errors.New("pg down") }}
		})
		w := e.do(http.MethodGet, "/health/ready", "", false)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	hub := realtime.New(realtime.WithMetrics(realtime.MustNewMetrics(reg)), realtime.WithHeartbeatInterval(time.Hour))
	t.Cleanup(hub.Close)
	hub.Register(nopSink{}, realtime.AudiencePublic)

	e := newEnv(t, func(d *httpapi.Deps) {
		d.Hub = hub
		d.Gatherer = reg
	})

	w := e.do(http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "livefeed_realtime_subscribers")

	w = newEnv(t).do(http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBooking(t *testing.T) {
	t.Parallel()

	t.Run("created_and_broadcast_to_auth", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)

		w := e.do(http.MethodPost, "/api/bookings", validBooking, false)
		require.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, "pending", body["status"])
		assert.NotEmpty(t, body["id"])

		calls := e.rec.all()
		require.Len(t, calls, 1)
		assert.Equal(t, booking.EventCreated, calls[0].name)
		assert.Equal(t, realtime.TargetAuth, calls[0].target)
	})

	t.Run("validation_errors", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)

		w := e.do(http.MethodPost, "/api/bookings", `{"name":"Ann","email":"nope"}`, false)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decode(t, w)
		assert.Equal(t, "unprocessable_entity", body["code"])
		details, ok := body["details"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, details, "email")
		assert.Contains(t, details, "service")
		assert.Empty(t, e.rec.all())
	})

	t.Run("malformed_json", func(t *testing.T) {
		t.Parallel()
		w := newEnv(t).do(http.MethodPost, "/api/bookings", `{"name":`, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rate_limited", func(t *testing.T) {
		t.Parallel()
		limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Hour,
		})
		require.NoError(t, err)
		e := newEnv(t, func(d *httpapi.Deps) { d.Limiter = limiter })

		assert.Equal(t, http.StatusCreated, e.do(http.MethodPost, "/api/bookings", validBooking, false).Code)
		w := e.do(http.MethodPost, "/api/bookings", validBooking, false)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Len(t, e.rec.all(), 1)
	})
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	paths := []string{"/admin/api/bookings", "/admin/api/stats", "/admin/events"}
	for _, p := range paths {
		w := e.do(http.MethodGet, p, "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
	}

	r := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/admin/api/stats?access_token="+e.token, "", false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminBookings(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	w := e.do(http.MethodPost, "/api/bookings", validBooking, false)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	t.Run("list", func(t *testing.T) {
		w := e.do(http.MethodGet, "/admin/api/bookings?status=pending&limit=10", "", true)
		require.Equal(t, http.StatusOK, w.Code)
		list := decode(t, w)["bookings"].([]any)
		assert.Len(t, list, 1)

		assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/admin/api/bookings?limit=x", "", true).Code)
		assert.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodGet, "/admin/api/bookings?status=archived", "", true).Code)
	})

	t.Run("get", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/admin/api/bookings/"+id, "", true).Code)
		assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/admin/api/bookings/missing", "", true).Code)
	})

	t.Run("update_status", func(t *testing.T) {
		w := e.do(http.MethodPatch, "/admin/api/bookings/"+id, `{"status":"confirmed"}`, true)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "confirmed", decode(t, w)["status"])

		calls := e.rec.all()
		require.Len(t, calls, 2)
		assert.Equal(t, booking.EventUpdated, calls[1].name)
		assert.Equal(t, realtime.TargetAuth, calls[1].target)

		assert.Equal(t, http.StatusConflict,
			e.do(http.MethodPatch, "/admin/api/bookings/"+id, `{"status":"pending"}`, true).Code)
		assert.Equal(t, http.StatusUnprocessableEntity,
			e.do(http.MethodPatch, "/admin/api/bookings/"+id, `{"status":"archived"}`, true).Code)
		assert.Equal(t, http.StatusNotFound,
			e.do(http.MethodPatch, "/admin/api/bookings/missing", `{"status":"confirmed"}`, true).Code)
	})
}

func TestAdminBroadcast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		status int
		target realtime.Target
	}{
		{name: "public", body: `{"event":"announcement","payload":{"text":"hi"},"target":"public"}`, status: http.StatusAccepted, target: realtime.TargetPublic},
		{name: "default_target", body: `{"event":"announcement"}`, status: http.StatusAccepted, target: realtime.TargetAll},
		{name: "unknown_target", body: `{"event":"announcement","target":"admins"}`, status: http.StatusUnprocessableEntity},
		{name: "missing_event", body: `{"target":"all"}`, status: http.StatusUnprocessableEntity},
		{name: "reserved_event", body: `{"event":"ping"}`, status: http.StatusUnprocessableEntity},
		{name: "malformed", body: `{`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEnv(t)

			w := e.do(http.MethodPost, "/admin/api/broadcast", tt.body, true)
			assert.Equal(t, tt.status, w.Code)

			calls := e.rec.all()
			if tt.status != http.StatusAccepted {
				assert.Empty(t, calls)
				return
			}
			require.Len(t, calls, 1)
			assert.Equal(t, "announcement", calls[0].name)
			assert.Equal(t, tt.target, calls[0].target)
		})
	}
}

func TestAdminStats(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.hub.Register(nopSink{}, realtime.AudiencePublic)
	e.hub.Register(nopSink{}, realtime.AudiencePublic)
	e.hub.Register(nopSink{}, realtime.AudienceAuth)

	w := e.do(http.MethodGet, "/admin/api/stats", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"subscribers":3,"byAudience":{"public":2,"auth":1},"heartbeatActive":true}`,
		w.Body.String())
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	w := e.do(http.MethodGet, "/nope", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["code"])

	w = e.do(http.MethodDelete, "/api/bookings", "", false)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()

	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		switch {
		case line == "" && name != "":
			return name, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

// A booking submitted on the public site shows up on the admin stream and
// never on the public one.
func TestStreams_BookingFlow(t *testing.T) {
	t.Parallel()

	e := newEnv(t, func(d *httpapi.Deps) {
		d.Broadcaster = nil
		d.Bookings = booking.NewService(booking.NewMemoryStore(), d.Hub)
	})
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	open := func(path string) *bufio.Reader {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return bufio.NewReader(resp.Body)
	}

	admin := open("/admin/events?access_token=" + e.token)
	name, data := readEvent(t, admin)
	assert.Equal(t, realtime.EventConnected, name)
	assert.Contains(t, data, `"audience":"auth"`)

	public := open("/events")
	name, data = readEvent(t, public)
	assert.Equal(t, realtime.EventConnected, name)
	assert.Contains(t, data, `"audience":"public"`)

	require.Eventually(t, func() bool { return e.hub.Subscribers() == 2 }, time.Second, 5*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/bookings", "application/json", bytes.NewBufferString(validBooking))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	name, data = readEvent(t, admin)
	assert.Equal(t, booking.EventCreated, name)
	assert.Contains(t, data, `"event":"booking.created"`)
	assert.Contains(t, data, `"email":"ann@example.com"`)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/admin/api/broadcast",
		strings.NewReader(`{"event":"announcement","payload":{"text":"open"},"target":"public"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	name, _ = readEvent(t, public)
	assert.Equal(t, "announcement", name)
	name, _ = readEvent(t, admin)
	assert.Equal(t, "announcement", name)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	require.NoError(t, err)

	var tokens *jwt.Service
	e := newEnv(t, func(d *httpapi.Deps) {
		tokens = d.Tokens
		auth, err := adminauth.New(adminauth.Config{
			Email:        "admin@example.com",
			PasswordHash: string(hash),
		}, d.Tokens)
		require.NoError(t, err)
		d.Auth = auth
	})

	w := e.do(http.MethodPost, "/admin/api/login", `{"email":"admin@example.com","password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/admin/api/login", `{"email":"admin@example.com","password":"correct horse battery"}`, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Bearer", body["tokenType"])

	claims, err := tokens.Parse(body["accessToken"].(string))
	require.NoError(t, err)
	assert.Equal(t, adminauth.RoleAdmin, claims.Role)

	r := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	r.Header.Set("Authorization", "Bearer "+body["accessToken"].(string))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_Disabled(t *testing.T) {
	t.Parallel()

	w := newEnv(t).do(http.MethodPost, "/admin/api/login", `{"email":"a","password":"b"}`, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/livefeed/core/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json_output_with_attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "livefeed")),
		)
		log.Info("hello", logger.Component("test"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "test", rec["component"])
		assert.Equal(t, "livefeed", rec["service"])
	})

	t.Run("level_filters_records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		log.Warn("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("development_logs_debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("app"), logger.WithOutput(&buf))
		log.Debug("verbose")

		assert.Contains(t, buf.String(), "verbose")
		assert.Contains(t, buf.String(), "env=development")
	})

	t.Run("production_is_json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithEnvironment("production", "app"), logger.WithOutput(&buf))
		log.Debug("hidden")
		log.Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"env":"production"`)
	})

	t.Run("context_values_are_injected", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", ctxKey{}),
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "with ctx")
		log.With("k", "v").InfoContext(context.Background(), "without ctx value")

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)
		assert.Contains(t, string(lines[0]), `"request_id":"req-1"`)
		assert.NotContains(t, string(lines[1]), "request_id")
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("nope"))
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	t.Run("error_nil_is_empty", func(t *testing.T) {
		t.Parallel()
		assert.True(t, logger.Error(nil).Equal(slog.Attr{}))

		err := errors.New("boom")
		attr := logger.Error(err)
		assert.Equal(t, "error", attr.Key)
		assert.Equal(t, err, attr.Value.Any())
	})

	t.Run("errors_skips_nil", func(t *testing.T) {
		t.Parallel()
		err1, err2 := errors.New("a"), errors.New("b")
		attr := logger.Errors(err1, nil, err2)
		require.Equal(t, slog.KindGroup, attr.Value.Kind())
		g := attr.Value.Group()
		require.Len(t, g, 2)
		assert.Equal(t, "0", g[0].Key)
		assert.Equal(t, "2", g[1].Key)
		assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
	})

	t.Run("domain_helpers", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "subscriber_id", logger.SubscriberID("abc").Key)
		assert.True(t, logger.SubscriberID("").Equal(slog.Attr{}))
		assert.Equal(t, "auth", logger.Audience("auth").Value.String())
		assert.Equal(t, "all", logger.Target("all").Value.String())
		assert.True(t, logger.Reason("").Equal(slog.Attr{}))
		assert.Equal(t, 2*time.Second, logger.Latency(2*time.Second).Value.Duration())
	})
}

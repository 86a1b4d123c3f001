package realtime_test

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/livefeed/core/realtime"
)

var errBrokenPipe = errors.New("broken pipe")

// recordingSink captures written frames and can be switched to fail.
type recordingSink struct {
	mu     sync.Mutex
	frames []realtime.Frame
	fail   atomic.Bool
	block  chan struct{}
	closes atomic.Int32
}

func newRecordingSink() *recordingSink {
	return &recordingSink{}
}

func (s *recordingSink) WriteFrame(f realtime.Frame) error {
	if s.block != nil {
		<-s.block
	}
	if s.fail.Load() {
		return errBrokenPipe
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordingSink) Close() error {
	s.closes.Add(1)
	return errors.New("close on dead connection")
}

func (s *recordingSink) Frames() []realtime.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]realtime.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

func (s *recordingSink) Names() []string {
	frames := s.Frames()
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = f.Name
	}
	return names
}

func (s *recordingSink) waitFor(t *testing.T, n int) []realtime.Frame {
	t.Helper()
	require.Eventually(t, func() bool { return len(s.Frames()) >= n },
		time.Second, 5*time.Millisecond, "expected %d frames", n)
	return s.Frames()
}

func decodeData(t *testing.T, f realtime.Frame) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(f.Data, &m))
	return m
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
}

package redisrelay

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/livefeed/core/realtime"
)

// DefaultChannel is the Redis pub/sub channel used when none is configured.
const DefaultChannel = "livefeed:events"

// Message is the pub/sub wire format. Payload holds the already encoded
// event payload so relays forward it without decoding.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Target  realtime.Target `json:"target"`
	Origin  string          `json:"origin,omitempty"`
}

func encode(origin, name string, payload any, target realtime.Target) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeMessage, err)
	}
	if target == "" {
		target = realtime.TargetAll
	}
	return json.Marshal(Message{Event: name, Payload: raw, Target: target, Origin: origin})
}

// Decode parses and validates a pub/sub message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrDecodeMessage, err)
	}
	if m.Event == "" {
		return Message{}, fmt.Errorf("%w: missing event name", ErrDecodeMessage)
	}
	t, err := realtime.ParseTarget(string(m.Target))
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrDecodeMessage, err)
	}
	m.Target = t
	if len(m.Payload) == 0 {
		m.Payload = json.RawMessage("null")
	}
	return m, nil
}

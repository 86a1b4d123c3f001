package realtime

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Event names emitted by the hub itself.
const (
	EventConnected = "connected"
	EventPing      = "ping"
)

// timestampLayout is ISO-8601 in UTC with millisecond precision,
// e.g. 2026-10-18T09:30:00.000Z.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp marshals as an ISO-8601 UTC string with milliseconds.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(timestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(timestampLayout)
}

// Envelope is the data of every broadcast frame.
type Envelope struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	At      Timestamp `json:"at"`
}

// ConnectedPayload is the data of the handshake frame. It is sent as is,
// without an Envelope.
type ConnectedPayload struct {
	ConnectedAt Timestamp `json:"connectedAt"`
	Audience    Audience  `json:"audience"`
}

// PingPayload is the data of heartbeat frames.
type PingPayload struct {
	At Timestamp `json:"at"`
}

// Frame is one encoded event-stream block. Data is JSON and never contains
// a raw newline.
type Frame struct {
	Name string
	Data []byte
}

// NewFrame encodes v as the data of an event named name.
func NewFrame(name string, v any) (Frame, error) {
	if err := ValidateEventName(name); err != nil {
		return Frame{}, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Frame{}, fmt.Errorf("realtime: encode %q: %w", name, err)
	}
	return Frame{Name: name, Data: data}, nil
}

// Bytes renders the frame in text/event-stream format:
//
//	event: <name>\n
//	data: <json>\n
//	\n
func (f Frame) Bytes() []byte {
	b := make([]byte, 0, len(f.Name)+len(f.Data)+16)
	b = append(b, "event: "...)
	b = append(b, f.Name...)
	b = append(b, "\ndata: "...)
	b = append(b, f.Data...)
	b = append(b, "\n\n"...)
	return b
}

// WriteTo writes the rendered frame to w.
func (f Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// ValidateEventName rejects names that cannot be framed: empty names and
// names containing CR or LF, which would end the event line early.
func ValidateEventName(name string) error {
	if name == "" || strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidEventName, name)
	}
	return nil
}

package realtime

import "errors"

var (
	ErrInvalidAudience      = errors.New("realtime: invalid audience")
	ErrInvalidTarget        = errors.New("realtime: invalid target")
	ErrInvalidEventName     = errors.New("realtime: invalid event name")
	ErrStreamingUnsupported = errors.New("realtime: streaming unsupported")
	ErrQueueFull            = errors.New("realtime: subscriber queue full")
	ErrSubscriberClosed     = errors.New("realtime: subscriber closed")
)

package redisrelay

import "errors"

var (
	ErrEncodeMessage   = errors.New("redisrelay: failed to encode message")
	ErrDecodeMessage   = errors.New("redisrelay: invalid message")
	ErrSubscribeFailed = errors.New("redisrelay: subscribe failed")
)

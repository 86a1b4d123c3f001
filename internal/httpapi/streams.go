package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/realtime"
)

type streamHandlers struct {
	hub *realtime.Hub
}

func (h *streamHandlers) sse(audience realtime.Audience) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.hub.ServeSSE(c.Writer, c.Request, audience)
	}
}

func (h *streamHandlers) websocket(audience realtime.Audience) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.hub.ServeWebSocket(c.Writer, c.Request, audience)
	}
}

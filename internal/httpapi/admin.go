package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/realtime"
	"github.com/dmitrymomot/livefeed/core/response"
	"github.com/dmitrymomot/livefeed/middleware"
)

type adminHandlers struct {
	hub         *realtime.Hub
	broadcaster realtime.Broadcaster
	logger      *slog.Logger
}

type broadcastRequest struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Target  string          `json:"target"`
}

type statsResponse struct {
	Subscribers     int            `json:"subscribers"`
	ByAudience      map[string]int `json:"byAudience"`
	HeartbeatActive bool           `json:"heartbeatActive"`
}

func (h *adminHandlers) broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.ErrBadRequest.WithMessage("invalid JSON body"))
		return
	}

	target, err := realtime.ParseTarget(req.Target)
	if err != nil {
		response.Error(c, response.ErrUnprocessableEntity.WithMessage(err.Error()))
		return
	}
	if err := realtime.ValidateEventName(req.Event); err != nil {
		response.Error(c, response.ErrUnprocessableEntity.WithMessage(err.Error()))
		return
	}
	if req.Event == realtime.EventConnected || req.Event == realtime.EventPing {
		response.Error(c, response.ErrUnprocessableEntity.WithMessage("event name is reserved"))
		return
	}

	var payload any
	if len(req.Payload) > 0 {
		payload = req.Payload
	}
	h.broadcaster.Broadcast(req.Event, payload, target)

	attrs := []any{
		logger.Component("admin"),
		logger.Event(req.Event),
		logger.Target(target.String()),
	}
	if claims, ok := middleware.GetClaims(c.Request.Context()); ok {
		attrs = append(attrs, logger.ID("subject", claims.Subject))
	}
	h.logger.InfoContext(c.Request.Context(), "manual broadcast", attrs...)

	c.Status(http.StatusAccepted)
	c.Writer.WriteHeaderNow()
}

func (h *adminHandlers) stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, statsResponse{
		Subscribers: h.hub.Subscribers(),
		ByAudience: map[string]int{
			realtime.AudiencePublic.String(): h.hub.SubscribersByAudience(realtime.AudiencePublic),
			realtime.AudienceAuth.String():   h.hub.SubscribersByAudience(realtime.AudienceAuth),
		},
		HeartbeatActive: h.hub.HeartbeatActive(),
	})
}

func notFound(c *gin.Context) {
	response.Error(c, response.ErrNotFound)
}

func methodNotAllowed(c *gin.Context) {
	response.Error(c, response.ErrMethodNotAllowed)
}

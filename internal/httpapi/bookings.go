package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/response"
	"github.com/dmitrymomot/livefeed/core/validator"
	"github.com/dmitrymomot/livefeed/internal/booking"
)

type bookingHandlers struct {
	svc *booking.Service
}

type updateStatusRequest struct {
	Status booking.Status `json:"status"`
}

func (h *bookingHandlers) create(c *gin.Context) {
	var in booking.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, response.ErrBadRequest.WithMessage("invalid JSON body"))
		return
	}

	b, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		bookingError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, b)
}

func (h *bookingHandlers) get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		bookingError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, b)
}

func (h *bookingHandlers) list(c *gin.Context) {
	f := booking.ListFilter{Status: booking.Status(c.Query("status"))}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error(c, response.ErrBadRequest.WithMessage("limit must be a non-negative integer"))
			return
		}
		f.Limit = n
	}

	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		bookingError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *bookingHandlers) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.ErrBadRequest.WithMessage("invalid JSON body"))
		return
	}

	b, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		bookingError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, b)
}

func bookingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.Error(c, response.ErrUnprocessableEntity.
			WithMessage("validation failed").
			WithDetails(verrs.Fields()))
	case errors.Is(err, booking.ErrNotFound):
		response.Error(c, response.ErrNotFound.WithMessage("booking not found"))
	case errors.Is(err, booking.ErrInvalidStatus):
		response.Error(c, response.ErrUnprocessableEntity.WithMessage(err.Error()))
	case errors.Is(err, booking.ErrInvalidTransition):
		response.Error(c, response.ErrConflict.WithMessage(err.Error()))
	default:
		response.Error(c, err)
	}
}

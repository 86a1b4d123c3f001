package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/response"
	"github.com/dmitrymomot/livefeed/internal/adminauth"
)

type loginHandler struct {
	auth   *adminauth.Authenticator
	logger *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *loginHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.ErrBadRequest.WithMessage("invalid JSON body"))
		return
	}

	token, err := h.auth.Login(req.Email, req.Password)
	if errors.Is(err, adminauth.ErrInvalidCredentials) {
		h.logger.WarnContext(c.Request.Context(), "admin login failed",
			logger.Component("auth"),
			logger.ClientIP(c.ClientIP()),
		)
		response.Error(c, response.ErrUnauthorized.WithMessage(err.Error()))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, token)
}

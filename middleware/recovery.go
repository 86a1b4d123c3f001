package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/response"
)

// Recovery turns a handler panic into a 500 and logs it with the stack.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			log.ErrorContext(c.Request.Context(), "panic recovered",
				logger.Component("http"),
				logger.Method(c.Request.Method),
				logger.Path(c.Request.URL.Path),
				slog.String("panic", fmt.Sprint(rec)),
				slog.String("stack", string(debug.Stack())),
			)
			if !c.Writer.Written() {
				response.Error(c, response.ErrInternalServerError)
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}

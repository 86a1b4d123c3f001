package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type statusCode interface {
	StatusCode() int
}

// AsHTTPError converts err into an HTTPError. Errors exposing StatusCode()
// map to the matching predefined error with err as the cause; anything
// else becomes a 500.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = ErrInternalServerError
	}
	return base.WithError(err)
}

// Error aborts the request with err rendered as JSON. Causes of 5xx errors
// are recorded on the gin context for the logging middleware and left out
// of the body.
func Error(c *gin.Context, err error) {
	httpErr := AsHTTPError(err)
	if httpErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		httpErr.Details = nil
	}
	c.AbortWithStatusJSON(httpErr.Status, httpErr)
}

// JSON writes v with status. A nil v with status 0 is a 204.
func JSON(c *gin.Context, status int, v any) {
	if status == 0 {
		status = http.StatusOK
		if v == nil {
			status = http.StatusNoContent
		}
	}
	if status == http.StatusNoContent {
		c.Status(status)
		c.Writer.WriteHeaderNow()
		return
	}
	c.JSON(status, v)
}

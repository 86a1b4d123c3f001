package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
//
// Example:
//
//	router.GET("/health/live", health.Liveness)
func Liveness(c *gin.Context) {
	c.String(http.StatusOK, "ALIVE")
}

// NoContent returns HTTP 204 without body. Ideal for high-frequency checks.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

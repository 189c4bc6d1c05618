package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"realtime-service/internal/response"
)

// InternalAuth guards the service-to-service API with a shared key
// carried in the X-Internal-API-Key header. An empty configured key
// disables the internal API entirely.
func InternalAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "Internal API is disabled")
			c.Abort()
			return
		}

		provided := c.GetHeader("X-Internal-API-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid internal API key")
			c.Abort()
			return
		}

		c.Next()
	}
}

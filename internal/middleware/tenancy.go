package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realtime-service/internal/response"
	"realtime-service/internal/tenancy"
)

// RejectClientTenantID blocks requests that try to pass a tenant id in
// the query string. Tenant scope always comes from the authenticated
// session; under enforce mode a smuggled id fails the request, under
// warn it is logged and ignored.
func RejectClientTenantID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := tenancy.AssertNoClientTenantID(nil, c.Request.URL.Query(), c.FullPath()); err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Tenant id must not be supplied by the client")
			c.Abort()
			return
		}
		c.Next()
	}
}

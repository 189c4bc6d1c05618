package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func internalTestRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/internal/ping", InternalAuth(apiKey), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestInternalAuthAcceptsMatchingKey(t *testing.T) {
	r := internalTestRouter("s2s-key")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/ping", nil)
	req.Header.Set("X-Internal-API-Key", "s2s-key")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInternalAuthRejectsWrongOrMissingKey(t *testing.T) {
	r := internalTestRouter("s2s-key")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/ping", nil)
	req.Header.Set("X-Internal-API-Key", "wrong")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/internal/ping", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInternalAuthDisabledWithoutConfiguredKey(t *testing.T) {
	r := internalTestRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/ping", nil)
	req.Header.Set("X-Internal-API-Key", "anything")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRejectClientTenantIDBlocksSmuggledQueryParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/notifications", RejectClientTenantID(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Test binaries run the guard in enforce mode
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications?tenant_id=abc", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/notifications?page=2", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

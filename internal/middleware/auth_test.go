package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/tenancy"
)

type fakeValidator struct {
	identity *tenancy.Identity
	err      error
}

func (f *fakeValidator) ValidateToken(_ context.Context, _ string) (*tenancy.Identity, error) {
	return f.identity, f.err
}

func TestAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthWithValidator(&fakeValidator{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthWithValidator(&fakeValidator{err: errors.New("expired")}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAttachesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tenant := uuid.New()
	identity := &tenancy.Identity{UserID: uuid.New(), TenantID: &tenant}

	var seen *tenancy.Identity
	r := gin.New()
	r.GET("/protected", AuthWithValidator(&fakeValidator{identity: identity}), func(c *gin.Context) {
		seen = GetIdentity(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, identity.UserID, seen.UserID)
	require.NotNil(t, seen.TenantID)
	assert.Equal(t, tenant, *seen.TenantID)
}

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestLocalValidatorParsesClaims(t *testing.T) {
	v := NewLocalValidator("test-secret")
	userID := uuid.New()
	tenantID := uuid.New()

	tokenStr := signTestToken(t, "test-secret", jwt.MapClaims{
		"user_id":   userID.String(),
		"tenant_id": tenantID.String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	identity, err := v.ValidateToken(context.Background(), tokenStr)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	require.NotNil(t, identity.TenantID)
	assert.Equal(t, tenantID, *identity.TenantID)
}

func TestLocalValidatorAcceptsSubClaim(t *testing.T) {
	v := NewLocalValidator("test-secret")
	userID := uuid.New()

	tokenStr := signTestToken(t, "test-secret", jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	identity, err := v.ValidateToken(context.Background(), tokenStr)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Nil(t, identity.TenantID)
}

func TestLocalValidatorRejectsBadSignatureAndExpiry(t *testing.T) {
	v := NewLocalValidator("test-secret")
	userID := uuid.New()

	wrongKey := signTestToken(t, "other-secret", jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	_, err := v.ValidateToken(context.Background(), wrongKey)
	assert.Error(t, err)

	expired := signTestToken(t, "test-secret", jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	_, err = v.ValidateToken(context.Background(), expired)
	assert.Error(t, err)
}

func TestLocalValidatorRequiresUserID(t *testing.T) {
	v := NewLocalValidator("test-secret")

	tokenStr := signTestToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err := v.ValidateToken(context.Background(), tokenStr)
	assert.Error(t, err)
}

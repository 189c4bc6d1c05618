package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"realtime-service/internal/response"
	"realtime-service/internal/tenancy"
)

// ContextIdentity is the gin context key the auth middleware stores the
// resolved identity under.
const ContextIdentity = "identity"

// TokenValidator resolves a raw bearer token to a server-trusted
// identity. Backed by the auth service in production; tests inject
// fakes, and LocalValidator parses HMAC tokens without a network hop.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenStr string) (*tenancy.Identity, error)
}

// AuthWithValidator validates the Authorization bearer token and
// attaches the identity to the request context. Requests without a
// valid token are rejected; the websocket handshake has its own,
// permissive resolution path.
func AuthWithValidator(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		identity, err := validator.ValidateToken(ctx, parts[1])
		if err != nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextIdentity, identity)
		c.Set("user_id", identity.UserID)
		if identity.TenantID != nil {
			c.Set("tenant_id", *identity.TenantID)
		}

		c.Next()
	}
}

// GetIdentity reads the identity the auth middleware attached, nil when
// the request is unauthenticated.
func GetIdentity(c *gin.Context) *tenancy.Identity {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil
	}
	identity, ok := v.(*tenancy.Identity)
	if !ok {
		return nil
	}
	return identity
}

// LocalValidator parses HMAC-signed tokens in-process. No blacklist
// check; used when no auth service URL is configured.
type LocalValidator struct {
	secret []byte
}

func NewLocalValidator(secret string) *LocalValidator {
	return &LocalValidator{secret: []byte(secret)}
}

// ValidateToken parses and validates the token, extracting user_id and
// tenant_id claims.
func (v *LocalValidator) ValidateToken(_ context.Context, tokenStr string) (*tenancy.Identity, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	var userIDStr string
	if uid, ok := claims["user_id"].(string); ok {
		userIDStr = uid
	} else if sub, ok := claims["sub"].(string); ok {
		userIDStr = sub
	} else {
		return nil, errors.New("user id not found in token")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("invalid user id format")
	}

	identity := &tenancy.Identity{UserID: userID}
	if tid, ok := claims["tenant_id"].(string); ok {
		tenantID, err := uuid.Parse(tid)
		if err != nil {
			return nil, errors.New("invalid tenant id format")
		}
		identity.TenantID = &tenantID
	}

	return identity, nil
}

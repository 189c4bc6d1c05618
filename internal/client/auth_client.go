package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"realtime-service/internal/tenancy"
)

// AuthClient validates tokens against the auth service, which also
// checks the logout blacklist.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// TokenValidationRequest is the request body sent to the auth service
type TokenValidationRequest struct {
	Token string `json:"token"`
}

// TokenValidationResponse is the auth service's validation result.
// TenantID is empty for accounts not yet attached to a tenant.
type TokenValidationResponse struct {
	Valid    bool   `json:"valid"`
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId,omitempty"`
	Message  string `json:"message,omitempty"`
}

// NewAuthClient creates a new AuthClient
func NewAuthClient(baseURL string, timeout time.Duration, logger *zap.Logger) *AuthClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ValidateToken resolves a token to a server-trusted identity via the
// auth service. Implements middleware.TokenValidator.
func (c *AuthClient) ValidateToken(ctx context.Context, tokenStr string) (*tenancy.Identity, error) {
	url := fmt.Sprintf("%s/api/auth/validate", c.baseURL)

	bodyBytes, err := json.Marshal(TokenValidationRequest{Token: tokenStr})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to validate token", zap.Error(err))
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token validation failed with status: %d", resp.StatusCode)
	}

	var tokenResp TokenValidationResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !tokenResp.Valid {
		return nil, fmt.Errorf("invalid token: %s", tokenResp.Message)
	}

	userID, err := uuid.Parse(tokenResp.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	identity := &tenancy.Identity{UserID: userID}
	if tokenResp.TenantID != "" {
		tenantID, err := uuid.Parse(tokenResp.TenantID)
		if err != nil {
			return nil, fmt.Errorf("invalid tenant ID format: %w", err)
		}
		identity.TenantID = &tenantID
	}

	return identity, nil
}

package tenancy

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"realtime-service/internal/response"
)

// Mode controls how guard violations are handled
type Mode string

const (
	// ModeOff disables all checks
	ModeOff Mode = "off"
	// ModeWarn logs violations without failing the caller
	ModeWarn Mode = "warn"
	// ModeEnforce returns an error to the caller on violation
	ModeEnforce Mode = "enforce"
)

// ParseMode maps a config string to a Mode, defaulting to warn
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return ModeOff
	case "enforce", "throw", "strict":
		return ModeEnforce
	default:
		return ModeWarn
	}
}

// Identity is the server-derived user/tenant attachment for a session.
// TenantID is nil for sessions that resolved a user without a tenant.
type Identity struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
}

var (
	mu     sync.RWMutex
	mode   = ModeWarn
	logger = zap.NewNop()
)

// Configure sets the violation-handling mode and the logger used for
// warn-mode reporting. Safe to call at any time.
func Configure(m Mode, l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	mode = m
	if l != nil {
		logger = l
	}
}

// CurrentMode returns the effective mode. Test binaries always enforce
// so isolation regressions fail tests even when production runs in
// warn mode.
func CurrentMode() Mode {
	if testing.Testing() {
		return ModeEnforce
	}
	mu.RLock()
	defer mu.RUnlock()
	return mode
}

func currentLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// fail applies the configured mode to a violation: swallowed when off,
// logged when warn, returned when enforce.
func fail(err *response.AppError, fields ...zap.Field) error {
	switch CurrentMode() {
	case ModeOff:
		return nil
	case ModeWarn:
		currentLogger().Warn("tenancy guard violation",
			append([]zap.Field{zap.String("code", err.Code), zap.String("message", err.Message)}, fields...)...)
		return nil
	default:
		currentLogger().Error("tenancy guard violation",
			append([]zap.Field{zap.String("code", err.Code), zap.String("message", err.Message)}, fields...)...)
		return err
	}
}

// RequireTenantContext extracts the tenant id from a session identity.
// A missing tenant is always an error regardless of mode, because the
// caller has nothing to scope by; the mode only controls log severity.
func RequireTenantContext(id *Identity) (uuid.UUID, error) {
	if id != nil && id.TenantID != nil && *id.TenantID != uuid.Nil {
		return *id.TenantID, nil
	}
	err := response.NewAppError(response.ErrCodeUnauthorized, "Tenant context missing from session", "")
	if CurrentMode() != ModeOff {
		currentLogger().Warn("tenancy guard violation",
			zap.String("code", err.Code), zap.String("message", err.Message))
	}
	return uuid.Nil, err
}

// AssertTenantIDOnInsert fails when a tenant-owned write carries no
// tenant id.
func AssertTenantIDOnInsert(tenantID *uuid.UUID, entityName string) error {
	if tenantID != nil && *tenantID != uuid.Nil {
		return nil
	}
	return fail(
		response.NewValidationError(fmt.Sprintf("Insert of %s without tenant id", entityName), ""),
		zap.String("entity", entityName),
	)
}

// AssertNoClientTenantID fails when caller-supplied body or query data
// attempts to smuggle a tenant id that must come from the session.
func AssertNoClientTenantID(body map[string]interface{}, query url.Values, context string) error {
	smuggled := ""
	for _, key := range []string{"tenant_id", "tenantId"} {
		if body != nil {
			if _, ok := body[key]; ok {
				smuggled = "body." + key
			}
		}
		if query != nil && query.Get(key) != "" {
			smuggled = "query." + key
		}
	}
	if smuggled == "" {
		return nil
	}
	return fail(
		response.NewValidationError("Client-supplied tenant id rejected", context),
		zap.String("field", smuggled),
		zap.String("context", context),
	)
}

// AssertTenantOwnership fails with a forbidden error when an entity
// belongs to a different tenant than the caller's session.
func AssertTenantOwnership(entityTenantID, expectedTenantID uuid.UUID, entityType string, entityID uuid.UUID) error {
	if entityTenantID == expectedTenantID {
		return nil
	}
	return fail(
		response.NewAppError(response.ErrCodeForbidden, fmt.Sprintf("Cross-tenant access to %s", entityType), ""),
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID.String()),
		zap.String("entity_tenant_id", entityTenantID.String()),
		zap.String("expected_tenant_id", expectedTenantID.String()),
	)
}

// AssertChatMembership fails when a user is not a member of the chat
// scope they are acting on.
func AssertChatMembership(isMember bool, userID uuid.UUID, threadKind string, threadID uuid.UUID) error {
	if isMember {
		return nil
	}
	return fail(
		response.NewForbiddenError(fmt.Sprintf("Not a member of %s", threadKind)),
		zap.String("user_id", userID.String()),
		zap.String("thread_kind", threadKind),
		zap.String("thread_id", threadID.String()),
	)
}

// AssertTenantScopedRoom checks the naming convention that tenant-scoped
// room names embed the tenant id, so emission and authorization cannot
// drift apart.
func AssertTenantScopedRoom(roomName string, expectedTenantID uuid.UUID) error {
	if strings.Contains(roomName, expectedTenantID.String()) {
		return nil
	}
	return fail(
		response.NewValidationError("Room name is not scoped to tenant", roomName),
		zap.String("room", roomName),
		zap.String("expected_tenant_id", expectedTenantID.String()),
	)
}

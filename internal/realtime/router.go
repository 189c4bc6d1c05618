package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"realtime-service/internal/metrics"
	"realtime-service/internal/presence"
	"realtime-service/internal/tenancy"
)

const validateTimeout = 5 * time.Second

// AccessValidator answers whether a user may enter a chat scope. For
// channels: public-in-tenant or explicit member. For DMs: thread
// participant.
type AccessValidator interface {
	ValidateAccess(ctx context.Context, scope ChatScope, targetID, userID, tenantID uuid.UUID) (bool, error)
}

// PresenceBroadcaster pushes presence transitions out to the tenant.
// Implemented by the event emitter; the indirection keeps delivery
// behind the single emission path.
type PresenceBroadcaster interface {
	EmitPresenceChanged(tenantID uuid.UUID, payload presence.Payload)
}

// Router owns the connection lifecycle above the transport: identity
// attachment, presence bookkeeping, and room join authorization. User
// and tenant ids are always re-derived from the connection's identity,
// never from message payloads.
type Router struct {
	hub         *Hub
	tracker     *presence.Tracker
	validator   AccessValidator
	broadcaster PresenceBroadcaster
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func NewRouter(
	hub *Hub,
	tracker *presence.Tracker,
	validator AccessValidator,
	broadcaster PresenceBroadcaster,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		hub:         hub,
		tracker:     tracker,
		validator:   validator,
		broadcaster: broadcaster,
		logger:      logger,
		metrics:     m,
	}
}

// HandleConnect runs after the client registered with the hub: marks
// presence, attaches the personal room, and sends the CONNECTED ack.
// Unauthenticated connections get the ack with null identity and skip
// presence.
func (r *Router) HandleConnect(c *Client) {
	now := time.Now().UTC()
	payload := ConnectedPayload{
		ServerTime: now.Format(time.RFC3339),
		RequestID:  c.requestID.String(),
	}

	if id := c.identity; id != nil {
		userID := id.UserID.String()
		payload.UserID = &userID

		if id.TenantID != nil {
			tenantID := id.TenantID.String()
			payload.TenantID = &tenantID

			rec, changed := r.tracker.Connect(*id.TenantID, id.UserID)
			if changed {
				r.broadcastPresence(*id.TenantID, rec)
			}
		}

		r.hub.JoinRoom(c, UserRoom(id.UserID))
	}

	data, err := json.Marshal(Envelope{Type: EventConnected, Payload: payload, Timestamp: now})
	if err != nil {
		r.logger.Error("failed to marshal connected ack", zap.Error(err))
		return
	}
	c.enqueue(data)

	r.logger.Info("connection established",
		zap.String("request_id", c.requestID.String()),
		zap.Bool("authenticated", c.identity != nil))
}

// HandleDisconnect marks presence down. Room membership cleanup is the
// hub's job and happens for every disconnect path, graceful or not.
func (r *Router) HandleDisconnect(c *Client) {
	id := c.identity
	if id == nil || id.TenantID == nil {
		return
	}

	rec, changed := r.tracker.Disconnect(*id.TenantID, id.UserID)
	if changed {
		r.broadcastPresence(*id.TenantID, rec)
	}
}

// HandleMessage dispatches one inbound frame
func (r *Router) HandleMessage(c *Client, raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.logger.Warn("failed to parse message",
			zap.String("request_id", c.requestID.String()),
			zap.Error(err))
		return
	}

	switch msg.Type {
	case MsgJoinRoom:
		r.JoinRoom(c, msg.Kind, msg.ScopeID)
	case MsgLeaveRoom:
		r.LeaveRoom(c, msg.Kind, msg.ScopeID)
	case MsgJoinChat:
		r.JoinChatRoom(c, msg.Kind, msg.ScopeID)
	case MsgLeaveChat:
		r.LeaveChatRoom(c, msg.Kind, msg.ScopeID)
	case MsgPing:
		r.handlePing(c)
	case MsgSetIdle:
		r.handleSetIdle(c, msg.Idle)
	default:
		r.logger.Warn("unknown message type",
			zap.String("type", msg.Type),
			zap.String("request_id", c.requestID.String()))
	}
}

// JoinRoom handles the coarse scopes (project, client, workspace,
// tenant). These join without per-resource revalidation: the client
// only learns scope ids through authorized reads upstream. Tenant rooms
// additionally pass the scoped-room guard so a foreign tenant id cannot
// slip in when the guard enforces.
func (r *Router) JoinRoom(c *Client, kindStr, scopeStr string) DenyReason {
	kind, ok := ParseJoinableKind(kindStr)
	if !ok {
		r.denyJoin(c, kindStr, scopeStr, DenyValidationError)
		return DenyValidationError
	}

	scopeID, err := uuid.Parse(scopeStr)
	if err != nil {
		r.denyJoin(c, kindStr, scopeStr, DenyValidationError)
		return DenyValidationError
	}

	room := Room{Kind: kind, ScopeID: scopeID}

	if kind == RoomTenant {
		if id := c.identity; id != nil && id.TenantID != nil {
			if err := tenancy.AssertTenantScopedRoom(room.Name(), *id.TenantID); err != nil {
				r.denyJoin(c, kindStr, scopeStr, DenyAccessDenied)
				return DenyAccessDenied
			}
		}
	}

	r.hub.JoinRoom(c, room)
	return DenyNone
}

// LeaveRoom is always permitted and idempotent
func (r *Router) LeaveRoom(c *Client, kindStr, scopeStr string) {
	kind, ok := ParseJoinableKind(kindStr)
	if !ok {
		return
	}
	scopeID, err := uuid.Parse(scopeStr)
	if err != nil {
		return
	}
	r.hub.LeaveRoom(c, Room{Kind: kind, ScopeID: scopeID})
}

// JoinChatRoom is the validated path for channel and DM rooms. Chat is
// the only scope with per-resource ACLs distinct from tenant
// membership, so membership is re-checked against the connection's own
// identity on every join. Denials are silent on the wire and logged
// with a structured reason.
func (r *Router) JoinChatRoom(c *Client, scopeStr, targetStr string) DenyReason {
	id := c.identity
	if id == nil {
		return r.denyChatJoin(c, scopeStr, targetStr, DenyNotAuthenticated, nil)
	}

	tenantID, err := tenancy.RequireTenantContext(id)
	if err != nil {
		return r.denyChatJoin(c, scopeStr, targetStr, DenyNotAuthenticated, nil)
	}

	scope, kind, ok := ParseChatScope(scopeStr)
	if !ok {
		return r.denyChatJoin(c, scopeStr, targetStr, DenyValidationError, nil)
	}

	targetID, err := uuid.Parse(targetStr)
	if err != nil {
		return r.denyChatJoin(c, scopeStr, targetStr, DenyValidationError, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
	defer cancel()

	allowed, err := r.validator.ValidateAccess(ctx, scope, targetID, id.UserID, tenantID)
	if err != nil {
		return r.denyChatJoin(c, scopeStr, targetStr, DenyValidationError, err)
	}
	if !allowed {
		// Log-only: the wire response is the silent denial below.
		_ = tenancy.AssertChatMembership(false, id.UserID, string(kind), targetID)
		return r.denyChatJoin(c, scopeStr, targetStr, DenyAccessDenied, nil)
	}

	r.hub.JoinRoom(c, Room{Kind: kind, ScopeID: targetID})
	return DenyNone
}

// LeaveChatRoom is always permitted and idempotent
func (r *Router) LeaveChatRoom(c *Client, scopeStr, targetStr string) {
	_, kind, ok := ParseChatScope(scopeStr)
	if !ok {
		return
	}
	targetID, err := uuid.Parse(targetStr)
	if err != nil {
		return
	}
	r.hub.LeaveRoom(c, Room{Kind: kind, ScopeID: targetID})
}

func (r *Router) handlePing(c *Client) {
	id := c.identity
	if id == nil || id.TenantID == nil {
		return
	}

	rec, changed := r.tracker.Ping(*id.TenantID, id.UserID)
	if changed {
		r.broadcastPresence(*id.TenantID, rec)
	}
}

func (r *Router) handleSetIdle(c *Client, idle *bool) {
	if idle == nil {
		r.logger.Warn("SET_IDLE without idle flag",
			zap.String("request_id", c.requestID.String()))
		return
	}

	id := c.identity
	if id == nil || id.TenantID == nil {
		return
	}

	rec, changed := r.tracker.SetIdle(*id.TenantID, id.UserID, *idle)
	if changed {
		r.broadcastPresence(*id.TenantID, rec)
	}
}

func (r *Router) broadcastPresence(tenantID uuid.UUID, rec presence.Record) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.EmitPresenceChanged(tenantID, rec.ToPayload())
}

func (r *Router) denyJoin(c *Client, kind, scope string, reason DenyReason) {
	r.metrics.RoomJoinDenied(string(reason))
	r.logger.Info("room join denied",
		zap.String("reason", string(reason)),
		zap.String("kind", kind),
		zap.String("scope_id", scope),
		zap.String("request_id", c.requestID.String()))
}

func (r *Router) denyChatJoin(c *Client, scope, target string, reason DenyReason, cause error) DenyReason {
	r.metrics.RoomJoinDenied(string(reason))

	fields := []zap.Field{
		zap.String("reason", string(reason)),
		zap.String("scope", scope),
		zap.String("target_id", target),
		zap.String("request_id", c.requestID.String()),
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	r.logger.Info("chat join denied", fields...)
	return reason
}

package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"realtime-service/internal/presence"
	"realtime-service/internal/realtime"
)

// Event types pushed to rooms. UPPER_SNAKE on the wire.
const (
	EventProjectCreated       = "PROJECT_CREATED"
	EventProjectUpdated       = "PROJECT_UPDATED"
	EventProjectDeleted       = "PROJECT_DELETED"
	EventProjectClientChanged = "PROJECT_CLIENT_CHANGED"

	EventSectionCreated    = "SECTION_CREATED"
	EventSectionUpdated    = "SECTION_UPDATED"
	EventSectionDeleted    = "SECTION_DELETED"
	EventSectionsReordered = "SECTIONS_REORDERED"

	EventTaskCreated    = "TASK_CREATED"
	EventTaskUpdated    = "TASK_UPDATED"
	EventTaskDeleted    = "TASK_DELETED"
	EventTaskMoved      = "TASK_MOVED"
	EventTasksReordered = "TASKS_REORDERED"

	EventSubtaskCreated = "SUBTASK_CREATED"
	EventSubtaskUpdated = "SUBTASK_UPDATED"
	EventSubtaskDeleted = "SUBTASK_DELETED"

	EventAttachmentAdded   = "ATTACHMENT_ADDED"
	EventAttachmentDeleted = "ATTACHMENT_DELETED"

	EventClientCreated = "CLIENT_CREATED"
	EventClientUpdated = "CLIENT_UPDATED"
	EventClientDeleted = "CLIENT_DELETED"

	EventClientContactCreated = "CLIENT_CONTACT_CREATED"
	EventClientContactUpdated = "CLIENT_CONTACT_UPDATED"
	EventClientContactDeleted = "CLIENT_CONTACT_DELETED"

	EventClientInviteCreated  = "CLIENT_INVITE_CREATED"
	EventClientInviteAccepted = "CLIENT_INVITE_ACCEPTED"
	EventClientInviteRevoked  = "CLIENT_INVITE_REVOKED"

	EventTimerStarted = "TIMER_STARTED"
	EventTimerStopped = "TIMER_STOPPED"

	EventTimeEntryCreated = "TIME_ENTRY_CREATED"
	EventTimeEntryUpdated = "TIME_ENTRY_UPDATED"
	EventTimeEntryDeleted = "TIME_ENTRY_DELETED"

	EventPersonalTaskCreated = "PERSONAL_TASK_CREATED"
	EventPersonalTaskUpdated = "PERSONAL_TASK_UPDATED"
	EventPersonalTaskDeleted = "PERSONAL_TASK_DELETED"

	EventChatMessageSent    = "CHAT_MESSAGE_SENT"
	EventChatMessageUpdated = "CHAT_MESSAGE_UPDATED"
	EventChatMessageDeleted = "CHAT_MESSAGE_DELETED"
	EventChatMemberJoined   = "CHAT_MEMBER_JOINED"
	EventChatMemberLeft     = "CHAT_MEMBER_LEFT"

	EventNotificationCreated = "NOTIFICATION_CREATED"
)

// RoomEmitter is the low-level delivery primitive all emissions write
// through. Satisfied by *realtime.Hub.
type RoomEmitter interface {
	EmitToRoom(room realtime.Room, eventType string, payload interface{})
}

// Emitter is the only path from a domain mutation to live delivery.
// CRUD callers invoke exactly one function per mutation; the function
// owns payload shape and room targeting. Delivery is best-effort to
// clients connected at the moment of emission; there is no backlog.
//
// Every emission is mirrored to a redis channel named after the room so
// processes outside this one can follow along. The mirror is optional
// and never blocks or fails the emission.
type Emitter struct {
	rooms  RoomEmitter
	redis  *redis.Client
	logger *zap.Logger
}

func NewEmitter(rooms RoomEmitter, redisClient *redis.Client, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		rooms:  rooms,
		redis:  redisClient,
		logger: logger,
	}
}

// emit delivers one event to one room and mirrors it to redis
func (e *Emitter) emit(room realtime.Room, eventType string, payload interface{}) {
	e.rooms.EmitToRoom(room, eventType, payload)
	e.publish(room, eventType, payload)

	e.logger.Debug("event emitted",
		zap.String("event_type", eventType),
		zap.String("room", room.Name()))
}

func (e *Emitter) publish(room realtime.Room, eventType string, payload interface{}) {
	if e.redis == nil {
		return
	}

	data, err := json.Marshal(realtime.Envelope{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		e.logger.Error("failed to marshal event for publish",
			zap.String("event_type", eventType),
			zap.Error(err))
		return
	}

	channel := "realtime:" + room.Name()
	if err := e.redis.Publish(context.Background(), channel, data).Err(); err != nil {
		e.logger.Error("failed to publish event",
			zap.String("channel", channel),
			zap.Error(err))
	}
}

// --- Projects ---

// EmitProjectCreated targets the workspace room: nobody can be in the
// room of a project that did not exist a moment ago.
func (e *Emitter) EmitProjectCreated(p ProjectPayload) {
	e.emit(realtime.WorkspaceRoom(p.WorkspaceID), EventProjectCreated, p)
}

func (e *Emitter) EmitProjectUpdated(p ProjectPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventProjectUpdated, p)
}

func (e *Emitter) EmitProjectDeleted(p ProjectPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventProjectDeleted, p)
}

// EmitProjectClientChanged notifies the project room plus both affected
// client rooms (when they differ), then re-emits a generic update so
// listeners that only track PROJECT_UPDATED stay consistent.
func (e *Emitter) EmitProjectClientChanged(p ProjectClientChange) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventProjectClientChanged, p)

	if p.NewClientID != nil {
		e.emit(realtime.ClientRoom(*p.NewClientID), EventProjectClientChanged, p)
	}
	if p.PreviousClientID != nil && (p.NewClientID == nil || *p.PreviousClientID != *p.NewClientID) {
		e.emit(realtime.ClientRoom(*p.PreviousClientID), EventProjectClientChanged, p)
	}

	e.EmitProjectUpdated(ProjectPayload{
		ProjectID:   p.ProjectID,
		WorkspaceID: p.WorkspaceID,
		ClientID:    p.NewClientID,
		ActorID:     p.ActorID,
	})
}

// --- Sections ---

func (e *Emitter) EmitSectionCreated(p SectionPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventSectionCreated, p)
}

func (e *Emitter) EmitSectionUpdated(p SectionPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventSectionUpdated, p)
}

func (e *Emitter) EmitSectionDeleted(p SectionPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventSectionDeleted, p)
}

func (e *Emitter) EmitSectionsReordered(p SectionOrderPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventSectionsReordered, p)
}

// --- Tasks ---

func (e *Emitter) EmitTaskCreated(p TaskPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTaskCreated, p)
}

func (e *Emitter) EmitTaskUpdated(p TaskPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTaskUpdated, p)
}

func (e *Emitter) EmitTaskDeleted(p TaskPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTaskDeleted, p)
}

func (e *Emitter) EmitTaskMoved(p TaskMovePayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTaskMoved, p)
}

func (e *Emitter) EmitTasksReordered(p TaskOrderPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTasksReordered, p)
}

// --- Subtasks ---

func (e *Emitter) EmitSubtaskCreated(p SubtaskPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventSubtaskCreated, p)
}

func (e *Emitter) EmitSubtaskUpdated(p SubtaskPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventSubtaskUpdated, p)
}

func (e *Emitter) EmitSubtaskDeleted(p SubtaskPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventSubtaskDeleted, p)
}

// --- Attachments ---

func (e *Emitter) EmitAttachmentAdded(p AttachmentPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventAttachmentAdded, p)
}

func (e *Emitter) EmitAttachmentDeleted(p AttachmentPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventAttachmentDeleted, p)
}

// --- Clients ---

func (e *Emitter) EmitClientCreated(p ClientPayload) {
	e.emit(realtime.WorkspaceRoom(p.WorkspaceID), EventClientCreated, p)
}

// EmitClientUpdated goes to both the owning workspace room and the
// client's own room.
func (e *Emitter) EmitClientUpdated(p ClientPayload) {
	e.emit(realtime.WorkspaceRoom(p.WorkspaceID), EventClientUpdated, p)
	e.emit(realtime.ClientRoom(p.ClientID), EventClientUpdated, p)
}

func (e *Emitter) EmitClientDeleted(p ClientPayload) {
	e.emit(realtime.WorkspaceRoom(p.WorkspaceID), EventClientDeleted, p)
	e.emit(realtime.ClientRoom(p.ClientID), EventClientDeleted, p)
}

// --- Client contacts ---

func (e *Emitter) EmitClientContactCreated(p ClientContactPayload) {
	e.emit(realtime.ClientRoom(p.ClientID), EventClientContactCreated, p)
}

func (e *Emitter) EmitClientContactUpdated(p ClientContactPayload) {
	e.emit(realtime.ClientRoom(p.ClientID), EventClientContactUpdated, p)
}

func (e *Emitter) EmitClientContactDeleted(p ClientContactPayload) {
	e.emit(realtime.ClientRoom(p.ClientID), EventClientContactDeleted, p)
}

// --- Client invites ---

func (e *Emitter) EmitClientInviteCreated(p ClientInvitePayload) {
	e.emit(realtime.ClientRoom(p.ClientID), EventClientInviteCreated, p)
}

func (e *Emitter) EmitClientInviteAccepted(p ClientInvitePayload) {
	e.emit(realtime.ClientRoom(p.ClientID), EventClientInviteAccepted, p)
}

func (e *Emitter) EmitClientInviteRevoked(p ClientInvitePayload) {
	e.emit(realtime.ClientRoom(p.ClientID), EventClientInviteRevoked, p)
}

// --- Timers ---

func (e *Emitter) EmitTimerStarted(p TimerPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTimerStarted, p)
}

func (e *Emitter) EmitTimerStopped(p TimerPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTimerStopped, p)
}

// --- Time entries ---

func (e *Emitter) EmitTimeEntryCreated(p TimeEntryPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTimeEntryCreated, p)
}

func (e *Emitter) EmitTimeEntryUpdated(p TimeEntryPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTimeEntryUpdated, p)
}

func (e *Emitter) EmitTimeEntryDeleted(p TimeEntryPayload) {
	e.emit(realtime.ProjectRoom(p.ProjectID), EventTimeEntryDeleted, p)
}

// --- Personal tasks ---

func (e *Emitter) EmitPersonalTaskCreated(p PersonalTaskPayload) {
	e.emit(realtime.UserRoom(p.UserID), EventPersonalTaskCreated, p)
}

func (e *Emitter) EmitPersonalTaskUpdated(p PersonalTaskPayload) {
	e.emit(realtime.UserRoom(p.UserID), EventPersonalTaskUpdated, p)
}

func (e *Emitter) EmitPersonalTaskDeleted(p PersonalTaskPayload) {
	e.emit(realtime.UserRoom(p.UserID), EventPersonalTaskDeleted, p)
}

// --- Chat ---

func (e *Emitter) EmitChatMessageSent(p ChatMessagePayload) {
	e.emitChat(p, EventChatMessageSent)
}

func (e *Emitter) EmitChatMessageUpdated(p ChatMessagePayload) {
	e.emitChat(p, EventChatMessageUpdated)
}

func (e *Emitter) EmitChatMessageDeleted(p ChatMessagePayload) {
	e.emitChat(p, EventChatMessageDeleted)
}

func (e *Emitter) emitChat(p ChatMessagePayload, eventType string) {
	_, kind, ok := realtime.ParseChatScope(p.Scope)
	if !ok {
		e.logger.Warn("chat emission with unknown scope",
			zap.String("scope", p.Scope),
			zap.String("event_type", eventType))
		return
	}
	e.emit(realtime.Room{Kind: kind, ScopeID: p.TargetID}, eventType, p)
}

func (e *Emitter) EmitChatMemberJoined(p ChatMembershipPayload) {
	e.emit(realtime.ChatChannelRoom(p.ChannelID), EventChatMemberJoined, p)
}

func (e *Emitter) EmitChatMemberLeft(p ChatMembershipPayload) {
	e.emit(realtime.ChatChannelRoom(p.ChannelID), EventChatMemberLeft, p)
}

// --- Presence ---

// EmitPresenceChanged pushes a presence transition to the tenant room.
// Implements the router's PresenceBroadcaster.
func (e *Emitter) EmitPresenceChanged(tenantID uuid.UUID, payload presence.Payload) {
	e.emit(realtime.TenantRoom(tenantID), realtime.EventPresenceChanged, payload)
}

// --- Notifications ---

// EmitNotification pushes a persisted notification into the target
// user's personal room.
func (e *Emitter) EmitNotification(userID uuid.UUID, p NotificationPayload) {
	e.emit(realtime.UserRoom(userID), EventNotificationCreated, p)
}

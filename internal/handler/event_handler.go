package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"realtime-service/internal/domain"
	"realtime-service/internal/events"
	"realtime-service/internal/response"
	"realtime-service/internal/service"
)

// EventHandler is the internal service-to-service surface: the CRUD
// services call it after a successful mutation to fan the change out,
// and to dispatch notifications. Guarded by the internal API key.
type EventHandler struct {
	emitter    *events.Emitter
	dispatcher *service.Dispatcher
	logger     *zap.Logger
}

func NewEventHandler(emitter *events.Emitter, dispatcher *service.Dispatcher, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{emitter: emitter, dispatcher: dispatcher, logger: logger}
}

// EmitEvent godoc
// @Summary      Emit a domain event to its rooms
// @Description  Internal only. Routes the payload through the emission facade for the given entity and action.
// @Tags         internal
// @Param        entity path string true "Entity kind"
// @Param        action path string true "Event action"
// @Success      202 {object} response.SuccessResponse
// @Router       /internal/events/{entity}/{action} [post]
func (h *EventHandler) EmitEvent(c *gin.Context) {
	entity := c.Param("entity")
	action := c.Param("action")

	ok := h.route(c, entity, action)
	if !ok {
		return
	}

	response.SendSuccess(c, http.StatusAccepted, gin.H{"emitted": true})
}

// route binds the request body to the entity's payload shape and calls
// the matching facade function. Reports whether the emission happened;
// on failure the error response is already written.
func (h *EventHandler) route(c *gin.Context, entity, action string) bool {
	switch entity {
	case "project":
		if action == "client-changed" {
			var p events.ProjectClientChange
			if !bindPayload(c, &p) {
				return false
			}
			h.emitter.EmitProjectClientChanged(p)
			return true
		}
		var p events.ProjectPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitProjectCreated(p)
		case "updated":
			h.emitter.EmitProjectUpdated(p)
		case "deleted":
			h.emitter.EmitProjectDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "section":
		if action == "reordered" {
			var p events.SectionOrderPayload
			if !bindPayload(c, &p) {
				return false
			}
			h.emitter.EmitSectionsReordered(p)
			return true
		}
		var p events.SectionPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitSectionCreated(p)
		case "updated":
			h.emitter.EmitSectionUpdated(p)
		case "deleted":
			h.emitter.EmitSectionDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "task":
		switch action {
		case "moved":
			var p events.TaskMovePayload
			if !bindPayload(c, &p) {
				return false
			}
			h.emitter.EmitTaskMoved(p)
			return true
		case "reordered":
			var p events.TaskOrderPayload
			if !bindPayload(c, &p) {
				return false
			}
			h.emitter.EmitTasksReordered(p)
			return true
		}
		var p events.TaskPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitTaskCreated(p)
		case "updated":
			h.emitter.EmitTaskUpdated(p)
		case "deleted":
			h.emitter.EmitTaskDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "subtask":
		var p events.SubtaskPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitSubtaskCreated(p)
		case "updated":
			h.emitter.EmitSubtaskUpdated(p)
		case "deleted":
			h.emitter.EmitSubtaskDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "attachment":
		var p events.AttachmentPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "added":
			h.emitter.EmitAttachmentAdded(p)
		case "deleted":
			h.emitter.EmitAttachmentDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "client":
		var p events.ClientPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitClientCreated(p)
		case "updated":
			h.emitter.EmitClientUpdated(p)
		case "deleted":
			h.emitter.EmitClientDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "client-contact":
		var p events.ClientContactPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitClientContactCreated(p)
		case "updated":
			h.emitter.EmitClientContactUpdated(p)
		case "deleted":
			h.emitter.EmitClientContactDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "client-invite":
		var p events.ClientInvitePayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitClientInviteCreated(p)
		case "accepted":
			h.emitter.EmitClientInviteAccepted(p)
		case "revoked":
			h.emitter.EmitClientInviteRevoked(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "timer":
		var p events.TimerPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "started":
			h.emitter.EmitTimerStarted(p)
		case "stopped":
			h.emitter.EmitTimerStopped(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "time-entry":
		var p events.TimeEntryPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitTimeEntryCreated(p)
		case "updated":
			h.emitter.EmitTimeEntryUpdated(p)
		case "deleted":
			h.emitter.EmitTimeEntryDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "personal-task":
		var p events.PersonalTaskPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "created":
			h.emitter.EmitPersonalTaskCreated(p)
		case "updated":
			h.emitter.EmitPersonalTaskUpdated(p)
		case "deleted":
			h.emitter.EmitPersonalTaskDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "chat-message":
		var p events.ChatMessagePayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "sent":
			h.emitter.EmitChatMessageSent(p)
		case "updated":
			h.emitter.EmitChatMessageUpdated(p)
		case "deleted":
			h.emitter.EmitChatMessageDeleted(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	case "chat-member":
		var p events.ChatMembershipPayload
		if !bindPayload(c, &p) {
			return false
		}
		switch action {
		case "joined":
			h.emitter.EmitChatMemberJoined(p)
		case "left":
			h.emitter.EmitChatMemberLeft(p)
		default:
			return unknownAction(c, entity, action)
		}
		return true

	default:
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Unknown entity: "+entity)
		return false
	}
}

func bindPayload(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid event payload")
		return false
	}
	return true
}

func unknownAction(c *gin.Context, entity, action string) bool {
	response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Unknown action "+action+" for "+entity)
	return false
}

// DispatchNotification godoc
// @Summary      Dispatch one notification
// @Description  Internal only. Runs the full dispatch pipeline; a skipped event (self-excluded, cross-tenant, suppressed) still returns 200.
// @Tags         internal
// @Param        request body domain.NotificationEvent true "Notification event"
// @Success      200 {object} response.SuccessResponse
// @Router       /internal/notifications/dispatch [post]
func (h *EventHandler) DispatchNotification(c *gin.Context) {
	var event domain.NotificationEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid notification event")
		return
	}
	if event.TargetUserID == uuid.Nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "target_user_id is required")
		return
	}

	notification, err := h.dispatcher.Dispatch(c.Request.Context(), &event)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if notification == nil {
		response.SendSuccess(c, http.StatusOK, gin.H{"dispatched": false})
		return
	}
	response.SendSuccess(c, http.StatusOK, gin.H{"dispatched": true, "notification": notification})
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"realtime-service/internal/domain"
	"realtime-service/internal/events"
	"realtime-service/internal/metrics"
	"realtime-service/internal/repository"
	"realtime-service/internal/tenancy"
)

// Dispatch outcomes recorded per attempt
const (
	outcomeCreated      = "created"
	outcomeSelfExcluded = "self_excluded"
	outcomeCrossTenant  = "cross_tenant"
	outcomeSuppressed   = "suppressed"
	outcomeFailed       = "failed"
)

// NotificationPusher delivers a persisted notification into the target
// user's personal room. Satisfied by *events.Emitter.
type NotificationPusher interface {
	EmitNotification(userID uuid.UUID, p events.NotificationPayload)
}

// Dispatcher decides per (event, target user) whether a notification is
// created and pushed. The pipeline short-circuits in order: actor
// self-exclusion, tenant revalidation against the user table, the
// user's preference flags, then persist and push.
type Dispatcher struct {
	users         repository.UserRepository
	prefs         repository.PreferenceRepository
	notifications repository.NotificationRepository
	pusher        NotificationPusher
	invalidator   UnreadInvalidator
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// UnreadInvalidator drops a user's cached unread count after a write.
// Satisfied by *NotificationService; nil skips invalidation.
type UnreadInvalidator interface {
	InvalidateUnreadCount(ctx context.Context, userID uuid.UUID)
}

func NewDispatcher(
	users repository.UserRepository,
	prefs repository.PreferenceRepository,
	notifications repository.NotificationRepository,
	pusher NotificationPusher,
	invalidator UnreadInvalidator,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		users:         users,
		prefs:         prefs,
		notifications: notifications,
		pusher:        pusher,
		invalidator:   invalidator,
		logger:        logger,
		metrics:       m,
	}
}

// Dispatch runs the decision pipeline for one event. A nil notification
// with a nil error means the event was deliberately skipped; callers
// treat that as success.
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.NotificationEvent) (*domain.Notification, error) {
	// Never notify the actor about their own action.
	if event.ActorID != nil && *event.ActorID == event.TargetUserID {
		d.metrics.NotificationDispatched(string(event.Type), outcomeSelfExcluded)
		return nil, nil
	}

	// Re-derive the target's tenant from the user table. An upstream
	// caller passing a foreign user is skipped, not served; this check
	// runs regardless of the guard mode.
	if event.TenantID != nil {
		user, err := d.users.GetByID(ctx, event.TargetUserID)
		if err != nil {
			d.metrics.NotificationDispatched(string(event.Type), outcomeCrossTenant)
			d.logger.Warn("notification target not found, skipping",
				zap.String("target_user_id", event.TargetUserID.String()),
				zap.String("type", string(event.Type)),
				zap.Error(err))
			return nil, nil
		}
		if user.TenantID != *event.TenantID {
			// Log-only: the dispatch outcome below is the caller-visible result.
			_ = tenancy.AssertTenantOwnership(user.TenantID, *event.TenantID, "user", user.ID)
			d.metrics.NotificationDispatched(string(event.Type), outcomeCrossTenant)
			d.logger.Warn("cross-tenant notification blocked",
				zap.String("target_user_id", event.TargetUserID.String()),
				zap.String("user_tenant_id", user.TenantID.String()),
				zap.String("event_tenant_id", event.TenantID.String()),
				zap.String("type", string(event.Type)))
			return nil, nil
		}
	}

	if !d.allowedByPreference(ctx, event) {
		d.metrics.NotificationDispatched(string(event.Type), outcomeSuppressed)
		return nil, nil
	}

	notification, err := d.persist(ctx, event)
	if err != nil {
		d.metrics.NotificationDispatched(string(event.Type), outcomeFailed)
		return nil, err
	}

	d.push(ctx, notification)
	d.metrics.NotificationDispatched(string(event.Type), outcomeCreated)

	d.logger.Info("notification created",
		zap.String("id", notification.ID.String()),
		zap.String("type", string(notification.Type)),
		zap.String("user_id", notification.UserID.String()))

	return notification, nil
}

// allowedByPreference resolves the user's opt-out flags. No row means
// all-notify; a lookup failure also resolves to notify, because
// over-notifying beats silently losing a message.
func (d *Dispatcher) allowedByPreference(ctx context.Context, event *domain.NotificationEvent) bool {
	pref, err := d.prefs.Get(ctx, event.TargetUserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			d.logger.Warn("preference lookup failed, defaulting to notify",
				zap.String("user_id", event.TargetUserID.String()),
				zap.Error(err))
		}
		return true
	}
	return pref.AllowsType(event.Type)
}

func (d *Dispatcher) persist(ctx context.Context, event *domain.NotificationEvent) (*domain.Notification, error) {
	var payload datatypes.JSON
	if event.Payload != nil {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
		}
		payload = data
	}

	notification := &domain.Notification{
		ID:        uuid.New(),
		TenantID:  event.TenantID,
		UserID:    event.TargetUserID,
		Type:      event.Type,
		Title:     event.Title,
		Message:   event.Message,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	if err := d.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func (d *Dispatcher) push(ctx context.Context, n *domain.Notification) {
	if d.invalidator != nil {
		d.invalidator.InvalidateUnreadCount(ctx, n.UserID)
	}
	if d.pusher == nil {
		return
	}

	var payload interface{}
	if len(n.Payload) > 0 {
		_ = json.Unmarshal(n.Payload, &payload)
	}

	d.pusher.EmitNotification(n.UserID, events.NotificationPayload{
		ID:        n.ID,
		TenantID:  n.TenantID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Payload:   payload,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	})
}

// dispatchTenant wraps Dispatch for the typed helpers, which always
// carry a tenant context.
func (d *Dispatcher) dispatchTenant(ctx context.Context, tenantID uuid.UUID, event *domain.NotificationEvent) error {
	if err := tenancy.AssertTenantIDOnInsert(&tenantID, "notification"); err != nil {
		return err
	}
	event.TenantID = &tenantID
	_, err := d.Dispatch(ctx, event)
	return err
}

func strPtr(s string) *string {
	return &s
}

// NotifyTaskAssigned tells a user they were assigned a task
func (d *Dispatcher) NotifyTaskAssigned(ctx context.Context, tenantID, targetUserID uuid.UUID, actorID *uuid.UUID, taskID uuid.UUID, taskTitle string) error {
	return d.dispatchTenant(ctx, tenantID, &domain.NotificationEvent{
		TargetUserID: targetUserID,
		ActorID:      actorID,
		Type:         domain.NotificationTaskAssigned,
		Title:        "Task assigned to you",
		Message:      strPtr(fmt.Sprintf("You were assigned '%s'", taskTitle)),
		Payload:      map[string]interface{}{"taskId": taskID.String()},
	})
}

// NotifyTaskCompleted tells a watcher a task they follow was completed
func (d *Dispatcher) NotifyTaskCompleted(ctx context.Context, tenantID, targetUserID uuid.UUID, actorID *uuid.UUID, taskID uuid.UUID, taskTitle string) error {
	return d.dispatchTenant(ctx, tenantID, &domain.NotificationEvent{
		TargetUserID: targetUserID,
		ActorID:      actorID,
		Type:         domain.NotificationTaskCompleted,
		Title:        "Task completed",
		Message:      strPtr(fmt.Sprintf("'%s' was completed", taskTitle)),
		Payload:      map[string]interface{}{"taskId": taskID.String()},
	})
}

// NotifyTaskStatusChanged tells a watcher a task changed status
func (d *Dispatcher) NotifyTaskStatusChanged(ctx context.Context, tenantID, targetUserID uuid.UUID, actorID *uuid.UUID, taskID uuid.UUID, taskTitle, newStatus string) error {
	return d.dispatchTenant(ctx, tenantID, &domain.NotificationEvent{
		TargetUserID: targetUserID,
		ActorID:      actorID,
		Type:         domain.NotificationTaskStatusChanged,
		Title:        "Task status changed",
		Message:      strPtr(fmt.Sprintf("'%s' moved to %s", taskTitle, newStatus)),
		Payload:      map[string]interface{}{"taskId": taskID.String(), "status": newStatus},
	})
}

// NotifyCommentAdded tells a task participant about a new comment
func (d *Dispatcher) NotifyCommentAdded(ctx context.Context, tenantID, targetUserID uuid.UUID, actorID *uuid.UUID, taskID uuid.UUID, taskTitle string) error {
	return d.dispatchTenant(ctx, tenantID, &domain.NotificationEvent{
		TargetUserID: targetUserID,
		ActorID:      actorID,
		Type:         domain.NotificationCommentAdded,
		Title:        "New comment",
		Message:      strPtr(fmt.Sprintf("New comment on '%s'", taskTitle)),
		Payload:      map[string]interface{}{"taskId": taskID.String()},
	})
}

// NotifyCommentMention tells a user they were mentioned in a comment
func (d *Dispatcher) NotifyCommentMention(ctx context.Context, tenantID, targetUserID uuid.UUID, actorID *uuid.UUID, taskID uuid.UUID, taskTitle string) error {
	return d.dispatchTenant(ctx, tenantID, &domain.NotificationEvent{
		TargetUserID: targetUserID,
		ActorID:      actorID,
		Type:         domain.NotificationCommentMention,
		Title:        "You were mentioned",
		Message:      strPtr(fmt.Sprintf("You were mentioned on '%s'", taskTitle)),
		Payload:      map[string]interface{}{"taskId": taskID.String()},
	})
}

// NotifyProjectUpdate tells a project member about a project change
func (d *Dispatcher) NotifyProjectUpdate(ctx context.Context, tenantID, targetUserID uuid.UUID, actorID *uuid.UUID, projectID uuid.UUID, projectName string) error {
	return d.dispatchTenant(ctx, tenantID, &domain.NotificationEvent{
		TargetUserID: targetUserID,
		ActorID:      actorID,
		Type:         domain.NotificationProjectUpdate,
		Title:        "Project updated",
		Message:      strPtr(fmt.Sprintf("'%s' was updated", projectName)),
		Payload:      map[string]interface{}{"projectId": projectID.String()},
	})
}

// NotifyProjectMemberAdded tells a user they were added to a project
func (d *Dispatcher) NotifyProjectMemberAdded(ctx context.Context, tenantID, targetUserID uuid.UUID, actorID *uuid.UUID, projectID uuid.UUID, projectName string) error {
	return d.dispatchTenant(ctx, tenantID, &domain.NotificationEvent{
		TargetUserID: targetUserID,
		ActorID:      actorID,
		Type:         domain.NotificationProjectMemberAdded,
		Title:        "Added to project",
		Message:      strPtr(fmt.Sprintf("You were added to '%s'", projectName)),
		Payload:      map[string]interface{}{"projectId": projectID.String()},
	})
}

// NotifyTaskDeadlineApproaching warns an assignee about an upcoming due
// date. Deadline notices have no actor, so self-exclusion never fires.
func (d *Dispatcher) NotifyTaskDeadlineApproaching(ctx context.Context, tenantID, targetUserID, taskID uuid.UUID, taskTitle string, dueDate time.Time) error {
	return d.dispatchTenant(ctx, tenantID, &domain.NotificationEvent{
		TargetUserID: targetUserID,
		Type:         domain.NotificationDeadlineApproaching,
		Title:        "Task deadline approaching",
		Message:      strPtr(fmt.Sprintf("'%s' is due %s", taskTitle, dueDate.UTC().Format("2006-01-02 15:04"))),
		Payload: map[string]interface{}{
			"taskId":  taskID.String(),
			"dueDate": dueDate.UTC().Format(time.RFC3339),
		},
	})
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationType classifies a notification for preference matching
type NotificationType string

const (
	NotificationTaskAssigned        NotificationType = "TASK_ASSIGNED"
	NotificationTaskCompleted       NotificationType = "TASK_COMPLETED"
	NotificationTaskStatusChanged   NotificationType = "TASK_STATUS_CHANGED"
	NotificationCommentAdded        NotificationType = "COMMENT_ADDED"
	NotificationCommentMention      NotificationType = "COMMENT_MENTION"
	NotificationProjectUpdate       NotificationType = "PROJECT_UPDATE"
	NotificationProjectMemberAdded  NotificationType = "PROJECT_MEMBER_ADDED"
	NotificationDeadlineApproaching NotificationType = "TASK_DEADLINE_APPROACHING"
)

// Notification represents one notification delivered to one user.
// A nil TenantID marks a system-wide notice visible regardless of tenant.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  *uuid.UUID       `gorm:"type:uuid;index:idx_notifications_tenant_id" json:"tenant_id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user_id" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   *string          `gorm:"type:text" json:"message"`
	Payload   datatypes.JSON   `gorm:"type:jsonb" json:"payload"`
	ReadAt    *time.Time       `gorm:"type:timestamp;index:idx_notifications_read_at" json:"read_at"`
	CreatedAt time.Time        `gorm:"type:timestamp;not null;default:now();index:idx_notifications_created_at" json:"created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// IsRead reports whether the notification has been read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NotificationEvent is the input to the dispatch pipeline. TenantID nil
// means a system-wide notice; ActorID identifies who caused the event so
// the actor is never notified about their own action.
type NotificationEvent struct {
	TenantID     *uuid.UUID             `json:"tenant_id"`
	TargetUserID uuid.UUID              `json:"target_user_id"`
	ActorID      *uuid.UUID             `json:"actor_id"`
	Type         NotificationType       `json:"type"`
	Title        string                 `json:"title"`
	Message      *string                `json:"message"`
	Payload      map[string]interface{} `json:"payload"`
}

// NotificationPreference holds per-type opt-out flags for one user.
// Absence of a row means every flag defaults to true.
type NotificationPreference struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_notification_preferences_user" json:"user_id"`
	TaskAssigned        bool      `gorm:"not null;default:true" json:"task_assigned"`
	TaskCompleted       bool      `gorm:"not null;default:true" json:"task_completed"`
	TaskStatusChanged   bool      `gorm:"not null;default:true" json:"task_status_changed"`
	CommentAdded        bool      `gorm:"not null;default:true" json:"comment_added"`
	CommentMention      bool      `gorm:"not null;default:true" json:"comment_mention"`
	ProjectUpdate       bool      `gorm:"not null;default:true" json:"project_update"`
	ProjectMemberAdded  bool      `gorm:"not null;default:true" json:"project_member_added"`
	DeadlineApproaching bool      `gorm:"not null;default:true" json:"deadline_approaching"`
	EmailEnabled        bool      `gorm:"not null;default:true" json:"email_enabled"`
	CreatedAt           time.Time `gorm:"type:timestamp;not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time `gorm:"type:timestamp;not null;default:now()" json:"updated_at"`
}

// TableName specifies the table name for NotificationPreference
func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// PreferenceUpdate is a partial preferences change. Nil fields keep
// their current value.
type PreferenceUpdate struct {
	TaskAssigned        *bool `json:"task_assigned"`
	TaskCompleted       *bool `json:"task_completed"`
	TaskStatusChanged   *bool `json:"task_status_changed"`
	CommentAdded        *bool `json:"comment_added"`
	CommentMention      *bool `json:"comment_mention"`
	ProjectUpdate       *bool `json:"project_update"`
	ProjectMemberAdded  *bool `json:"project_member_added"`
	DeadlineApproaching *bool `json:"deadline_approaching"`
	EmailEnabled        *bool `json:"email_enabled"`
}

// Apply overwrites the set fields onto p
func (u PreferenceUpdate) Apply(p *NotificationPreference) {
	if u.TaskAssigned != nil {
		p.TaskAssigned = *u.TaskAssigned
	}
	if u.TaskCompleted != nil {
		p.TaskCompleted = *u.TaskCompleted
	}
	if u.TaskStatusChanged != nil {
		p.TaskStatusChanged = *u.TaskStatusChanged
	}
	if u.CommentAdded != nil {
		p.CommentAdded = *u.CommentAdded
	}
	if u.CommentMention != nil {
		p.CommentMention = *u.CommentMention
	}
	if u.ProjectUpdate != nil {
		p.ProjectUpdate = *u.ProjectUpdate
	}
	if u.ProjectMemberAdded != nil {
		p.ProjectMemberAdded = *u.ProjectMemberAdded
	}
	if u.DeadlineApproaching != nil {
		p.DeadlineApproaching = *u.DeadlineApproaching
	}
	if u.EmailEnabled != nil {
		p.EmailEnabled = *u.EmailEnabled
	}
}

// DefaultPreferences returns the all-notify defaults used when no row exists
func DefaultPreferences(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID:              userID,
		TaskAssigned:        true,
		TaskCompleted:       true,
		TaskStatusChanged:   true,
		CommentAdded:        true,
		CommentMention:      true,
		ProjectUpdate:       true,
		ProjectMemberAdded:  true,
		DeadlineApproaching: true,
		EmailEnabled:        true,
	}
}

// AllowsType reports whether the user has the given notification type
// enabled. Unknown types default to true so new notification kinds are
// delivered until the user opts out.
func (p *NotificationPreference) AllowsType(t NotificationType) bool {
	switch t {
	case NotificationTaskAssigned:
		return p.TaskAssigned
	case NotificationTaskCompleted:
		return p.TaskCompleted
	case NotificationTaskStatusChanged:
		return p.TaskStatusChanged
	case NotificationCommentAdded:
		return p.CommentAdded
	case NotificationCommentMention:
		return p.CommentMention
	case NotificationProjectUpdate:
		return p.ProjectUpdate
	case NotificationProjectMemberAdded:
		return p.ProjectMemberAdded
	case NotificationDeadlineApproaching:
		return p.DeadlineApproaching
	default:
		return true
	}
}

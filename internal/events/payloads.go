package events

import (
	"time"

	"github.com/google/uuid"
)

// Payload shapes for every emitted event. One struct per domain
// concept; emit functions stamp the event type, so a concept whose
// kinds share a shape shares a struct. All cross-service ids are
// uuids; display fields are optional and client-safe.

type ProjectPayload struct {
	ProjectID   uuid.UUID  `json:"projectId"`
	WorkspaceID uuid.UUID  `json:"workspaceId"`
	ClientID    *uuid.UUID `json:"clientId,omitempty"`
	Name        string     `json:"name,omitempty"`
	ActorID     *uuid.UUID `json:"actorId,omitempty"`
}

// ProjectClientChange carries a project's client reassignment. Previous
// and new client may each be nil (attach/detach).
type ProjectClientChange struct {
	ProjectID        uuid.UUID  `json:"projectId"`
	WorkspaceID      uuid.UUID  `json:"workspaceId"`
	NewClientID      *uuid.UUID `json:"newClientId"`
	PreviousClientID *uuid.UUID `json:"previousClientId"`
	ActorID          *uuid.UUID `json:"actorId,omitempty"`
}

type SectionPayload struct {
	SectionID uuid.UUID `json:"sectionId"`
	ProjectID uuid.UUID `json:"projectId"`
	Name      string    `json:"name,omitempty"`
	Position  int       `json:"position,omitempty"`
}

type SectionOrderPayload struct {
	ProjectID  uuid.UUID   `json:"projectId"`
	SectionIDs []uuid.UUID `json:"sectionIds"`
}

type TaskPayload struct {
	TaskID    uuid.UUID  `json:"taskId"`
	ProjectID uuid.UUID  `json:"projectId"`
	SectionID *uuid.UUID `json:"sectionId,omitempty"`
	Title     string     `json:"title,omitempty"`
	Status    string     `json:"status,omitempty"`
	ActorID   *uuid.UUID `json:"actorId,omitempty"`
}

type TaskMovePayload struct {
	TaskID        uuid.UUID `json:"taskId"`
	ProjectID     uuid.UUID `json:"projectId"`
	FromSectionID uuid.UUID `json:"fromSectionId"`
	ToSectionID   uuid.UUID `json:"toSectionId"`
	Position      int       `json:"position"`
}

type TaskOrderPayload struct {
	ProjectID uuid.UUID   `json:"projectId"`
	SectionID uuid.UUID   `json:"sectionId"`
	TaskIDs   []uuid.UUID `json:"taskIds"`
}

type SubtaskPayload struct {
	SubtaskID uuid.UUID `json:"subtaskId"`
	TaskID    uuid.UUID `json:"taskId"`
	ProjectID uuid.UUID `json:"projectId"`
	Title     string    `json:"title,omitempty"`
	Done      bool      `json:"done,omitempty"`
}

type AttachmentPayload struct {
	AttachmentID uuid.UUID `json:"attachmentId"`
	TaskID       uuid.UUID `json:"taskId"`
	ProjectID    uuid.UUID `json:"projectId"`
	FileName     string    `json:"fileName,omitempty"`
}

type ClientPayload struct {
	ClientID    uuid.UUID `json:"clientId"`
	WorkspaceID uuid.UUID `json:"workspaceId"`
	Name        string    `json:"name,omitempty"`
}

type ClientContactPayload struct {
	ContactID uuid.UUID `json:"contactId"`
	ClientID  uuid.UUID `json:"clientId"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
}

type ClientInvitePayload struct {
	InviteID uuid.UUID `json:"inviteId"`
	ClientID uuid.UUID `json:"clientId"`
	Email    string    `json:"email,omitempty"`
	Status   string    `json:"status,omitempty"`
}

type TimerPayload struct {
	TimerID   uuid.UUID `json:"timerId"`
	TaskID    uuid.UUID `json:"taskId"`
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
	StartedAt string    `json:"startedAt,omitempty"`
	StoppedAt string    `json:"stoppedAt,omitempty"`
}

type TimeEntryPayload struct {
	EntryID   uuid.UUID `json:"entryId"`
	TaskID    uuid.UUID `json:"taskId"`
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
	Minutes   int       `json:"minutes,omitempty"`
}

// PersonalTaskPayload events stay inside the owner's personal room
type PersonalTaskPayload struct {
	TaskID uuid.UUID `json:"taskId"`
	UserID uuid.UUID `json:"userId"`
	Title  string    `json:"title,omitempty"`
	Done   bool      `json:"done,omitempty"`
}

type ChatMessagePayload struct {
	MessageID uuid.UUID `json:"messageId"`
	Scope     string    `json:"scope"`
	TargetID  uuid.UUID `json:"targetId"`
	SenderID  uuid.UUID `json:"senderId"`
	Body      string    `json:"body,omitempty"`
}

type ChatMembershipPayload struct {
	ChannelID uuid.UUID `json:"channelId"`
	UserID    uuid.UUID `json:"userId"`
}

// NotificationPayload is the client-safe push shape for a persisted
// notification record.
type NotificationPayload struct {
	ID        uuid.UUID   `json:"id"`
	TenantID  *uuid.UUID  `json:"tenantId"`
	UserID    uuid.UUID   `json:"userId"`
	Type      string      `json:"type"`
	Title     string      `json:"title"`
	Message   *string     `json:"message"`
	Payload   interface{} `json:"payload,omitempty"`
	ReadAt    *time.Time  `json:"readAt"`
	CreatedAt time.Time   `json:"createdAt"`
}

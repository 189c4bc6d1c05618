package domain

import (
	"github.com/google/uuid"
)

// ChatChannel is a read-only projection of the chat channel table.
// Public channels are joinable by anyone in the owning tenant; private
// channels require explicit membership.
type ChatChannel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_chat_channels_tenant_id" json:"tenant_id"`
	ProjectID *uuid.UUID `gorm:"type:uuid;index:idx_chat_channels_project_id" json:"project_id"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	IsPrivate bool       `gorm:"not null;default:false" json:"is_private"`
}

// TableName specifies the table name for ChatChannel
func (ChatChannel) TableName() string {
	return "chat_channels"
}

// ChatChannelMember is a read-only projection of channel membership
type ChatChannelMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_channel_members_channel_id" json:"channel_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_channel_members_user_id" json:"user_id"`
}

// TableName specifies the table name for ChatChannelMember
func (ChatChannelMember) TableName() string {
	return "chat_channel_members"
}

// ChatDirectThread is a read-only projection of a direct-message thread
type ChatDirectThread struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_direct_threads_tenant_id" json:"tenant_id"`
}

// TableName specifies the table name for ChatDirectThread
func (ChatDirectThread) TableName() string {
	return "chat_direct_threads"
}

// ChatDirectMember is a read-only projection of DM thread participants
type ChatDirectMember struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_direct_members_thread_id" json:"thread_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_direct_members_user_id" json:"user_id"`
}

// TableName specifies the table name for ChatDirectMember
func (ChatDirectMember) TableName() string {
	return "chat_direct_members"
}

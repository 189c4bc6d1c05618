package realtime

import (
	"fmt"

	"github.com/google/uuid"
)

// RoomKind names a broadcast scope class
type RoomKind string

const (
	RoomProject     RoomKind = "project"
	RoomClient      RoomKind = "client"
	RoomWorkspace   RoomKind = "workspace"
	RoomTenant      RoomKind = "tenant"
	RoomChatChannel RoomKind = "chat-channel"
	RoomChatDM      RoomKind = "chat-dm"
	RoomUser        RoomKind = "user"
)

// Room is a typed broadcast scope descriptor. All room names go through
// Name() so emission and authorization can never drift on ad hoc string
// concatenation.
type Room struct {
	Kind    RoomKind
	ScopeID uuid.UUID
}

// Name renders the canonical room name, `{kind}:{scopeId}`
func (r Room) Name() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ScopeID)
}

func ProjectRoom(projectID uuid.UUID) Room {
	return Room{Kind: RoomProject, ScopeID: projectID}
}

func ClientRoom(clientID uuid.UUID) Room {
	return Room{Kind: RoomClient, ScopeID: clientID}
}

func WorkspaceRoom(workspaceID uuid.UUID) Room {
	return Room{Kind: RoomWorkspace, ScopeID: workspaceID}
}

func TenantRoom(tenantID uuid.UUID) Room {
	return Room{Kind: RoomTenant, ScopeID: tenantID}
}

func ChatChannelRoom(channelID uuid.UUID) Room {
	return Room{Kind: RoomChatChannel, ScopeID: channelID}
}

func ChatDMRoom(threadID uuid.UUID) Room {
	return Room{Kind: RoomChatDM, ScopeID: threadID}
}

func UserRoom(userID uuid.UUID) Room {
	return Room{Kind: RoomUser, ScopeID: userID}
}

// ParseJoinableKind maps a client-supplied kind to one of the coarse
// scopes that join without revalidation. Chat scopes and user rooms are
// excluded: chat goes through the validated join path and user rooms
// are attached by the server only.
func ParseJoinableKind(s string) (RoomKind, bool) {
	switch RoomKind(s) {
	case RoomProject, RoomClient, RoomWorkspace, RoomTenant:
		return RoomKind(s), true
	default:
		return "", false
	}
}

// ChatScope distinguishes the two chat room flavors in join requests
type ChatScope string

const (
	ChatScopeChannel ChatScope = "channel"
	ChatScopeDM      ChatScope = "dm"
)

// ParseChatScope maps a client-supplied chat scope to its room kind
func ParseChatScope(s string) (ChatScope, RoomKind, bool) {
	switch ChatScope(s) {
	case ChatScopeChannel:
		return ChatScopeChannel, RoomChatChannel, true
	case ChatScopeDM:
		return ChatScopeDM, RoomChatDM, true
	default:
		return "", "", false
	}
}

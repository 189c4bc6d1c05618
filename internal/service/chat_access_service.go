package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"realtime-service/internal/realtime"
	"realtime-service/internal/repository"
	"realtime-service/internal/tenancy"
)

// ChatAccessService answers chat join authorization for the connection
// router. Channels are open to any tenant member unless private, in
// which case an explicit membership row is required; DM threads require
// participation. Every path re-checks the resource's owning tenant
// against the caller's, so a valid-looking id from another tenant is
// denied before membership is even considered.
type ChatAccessService struct {
	chats  repository.ChatRepository
	logger *zap.Logger
}

func NewChatAccessService(chats repository.ChatRepository, logger *zap.Logger) *ChatAccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatAccessService{chats: chats, logger: logger}
}

// ValidateAccess implements realtime.AccessValidator. Unknown targets
// report false rather than an error: a join for a deleted channel is an
// ordinary denial, not a server fault.
func (s *ChatAccessService) ValidateAccess(ctx context.Context, scope realtime.ChatScope, targetID, userID, tenantID uuid.UUID) (bool, error) {
	switch scope {
	case realtime.ChatScopeChannel:
		return s.validateChannel(ctx, targetID, userID, tenantID)
	case realtime.ChatScopeDM:
		return s.validateThread(ctx, targetID, userID, tenantID)
	default:
		return false, nil
	}
}

func (s *ChatAccessService) validateChannel(ctx context.Context, channelID, userID, tenantID uuid.UUID) (bool, error) {
	channel, err := s.chats.GetChannel(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if channel.TenantID != tenantID {
		// Log-only: a cross-tenant id is an ordinary denial on the wire.
		_ = tenancy.AssertTenantOwnership(channel.TenantID, tenantID, "chat_channel", channelID)
		return false, nil
	}

	if !channel.IsPrivate {
		return true, nil
	}

	return s.chats.IsChannelMember(ctx, channelID, userID)
}

func (s *ChatAccessService) validateThread(ctx context.Context, threadID, userID, tenantID uuid.UUID) (bool, error) {
	thread, err := s.chats.GetDirectThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if thread.TenantID != tenantID {
		_ = tenancy.AssertTenantOwnership(thread.TenantID, tenantID, "chat_direct_thread", threadID)
		return false, nil
	}

	return s.chats.IsThreadParticipant(ctx, threadID, userID)
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"realtime-service/internal/domain"
)

// ChatRepository reads the chat tables for join authorization. Channel
// and thread rows carry the owning tenant; membership rows answer the
// per-resource ACL question.
type ChatRepository interface {
	GetChannel(ctx context.Context, channelID uuid.UUID) (*domain.ChatChannel, error)
	IsChannelMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
	GetDirectThread(ctx context.Context, threadID uuid.UUID) (*domain.ChatDirectThread, error)
	IsThreadParticipant(ctx context.Context, threadID, userID uuid.UUID) (bool, error)
}

type chatRepositoryImpl struct {
	db *gorm.DB
}

// NewChatRepository creates a new instance of ChatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepositoryImpl{db: db}
}

// GetChannel fetches one chat channel by id
func (r *chatRepositoryImpl) GetChannel(ctx context.Context, channelID uuid.UUID) (*domain.ChatChannel, error) {
	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	var channel domain.ChatChannel
	err = db.WithContext(ctx).First(&channel, "id = ?", channelID).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// IsChannelMember reports whether the user has an explicit membership
// row for the channel.
func (r *chatRepositoryImpl) IsChannelMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	db, err := conn(r.db)
	if err != nil {
		return false, err
	}
	var count int64
	err = db.WithContext(ctx).
		Model(&domain.ChatChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetDirectThread fetches one DM thread by id
func (r *chatRepositoryImpl) GetDirectThread(ctx context.Context, threadID uuid.UUID) (*domain.ChatDirectThread, error) {
	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	var thread domain.ChatDirectThread
	err = db.WithContext(ctx).First(&thread, "id = ?", threadID).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// IsThreadParticipant reports whether the user participates in the DM
// thread.
func (r *chatRepositoryImpl) IsThreadParticipant(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	db, err := conn(r.db)
	if err != nil {
		return false, err
	}
	var count int64
	err = db.WithContext(ctx).
		Model(&domain.ChatDirectMember{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

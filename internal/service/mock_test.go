package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"realtime-service/internal/domain"
	"realtime-service/internal/events"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

// MockPreferenceRepository is a mock implementation of repository.PreferenceRepository
type MockPreferenceRepository struct {
	GetFunc           func(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error)
	GetOrDefaultsFunc func(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error)
	UpsertFunc        func(ctx context.Context, userID uuid.UUID, update domain.PreferenceUpdate) (*domain.NotificationPreference, error)
}

func (m *MockPreferenceRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPreferenceRepository) GetOrDefaults(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	if m.GetOrDefaultsFunc != nil {
		return m.GetOrDefaultsFunc(ctx, userID)
	}
	return domain.DefaultPreferences(userID), nil
}

func (m *MockPreferenceRepository) Upsert(ctx context.Context, userID uuid.UUID, update domain.PreferenceUpdate) (*domain.NotificationPreference, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, update)
	}
	return nil, nil
}

// MockNotificationRepository is a mock implementation of repository.NotificationRepository
type MockNotificationRepository struct {
	CreateFunc         func(ctx context.Context, notification *domain.Notification) error
	GetByIDForUserFunc func(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error)
	ListForUserFunc    func(ctx context.Context, userID, tenantID uuid.UUID, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error)
	UnreadCountFunc    func(ctx context.Context, userID, tenantID uuid.UUID) (int64, error)
	MarkAsReadFunc     func(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error)
	MarkAllAsReadFunc  func(ctx context.Context, userID, tenantID uuid.UUID) (int64, error)
	DeleteFunc         func(ctx context.Context, id, userID, tenantID uuid.UUID) (bool, bool, error)
	CleanupOldFunc     func(ctx context.Context, daysOld int) (int64, error)
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, notification)
	}
	return nil
}

func (m *MockNotificationRepository) GetByIDForUser(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error) {
	if m.GetByIDForUserFunc != nil {
		return m.GetByIDForUserFunc(ctx, id, userID, tenantID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockNotificationRepository) ListForUser(ctx context.Context, userID, tenantID uuid.UUID, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID, tenantID, page, limit, unreadOnly)
	}
	return nil, 0, nil
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, userID, tenantID uuid.UUID) (int64, error) {
	if m.UnreadCountFunc != nil {
		return m.UnreadCountFunc(ctx, userID, tenantID)
	}
	return 0, nil
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error) {
	if m.MarkAsReadFunc != nil {
		return m.MarkAsReadFunc(ctx, id, userID, tenantID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID, tenantID uuid.UUID) (int64, error) {
	if m.MarkAllAsReadFunc != nil {
		return m.MarkAllAsReadFunc(ctx, userID, tenantID)
	}
	return 0, nil
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id, userID, tenantID uuid.UUID) (bool, bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID, tenantID)
	}
	return false, false, nil
}

func (m *MockNotificationRepository) CleanupOld(ctx context.Context, daysOld int) (int64, error) {
	if m.CleanupOldFunc != nil {
		return m.CleanupOldFunc(ctx, daysOld)
	}
	return 0, nil
}

// MockChatRepository is a mock implementation of repository.ChatRepository
type MockChatRepository struct {
	GetChannelFunc          func(ctx context.Context, channelID uuid.UUID) (*domain.ChatChannel, error)
	IsChannelMemberFunc     func(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
	GetDirectThreadFunc     func(ctx context.Context, threadID uuid.UUID) (*domain.ChatDirectThread, error)
	IsThreadParticipantFunc func(ctx context.Context, threadID, userID uuid.UUID) (bool, error)
}

func (m *MockChatRepository) GetChannel(ctx context.Context, channelID uuid.UUID) (*domain.ChatChannel, error) {
	if m.GetChannelFunc != nil {
		return m.GetChannelFunc(ctx, channelID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockChatRepository) IsChannelMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	if m.IsChannelMemberFunc != nil {
		return m.IsChannelMemberFunc(ctx, channelID, userID)
	}
	return false, nil
}

func (m *MockChatRepository) GetDirectThread(ctx context.Context, threadID uuid.UUID) (*domain.ChatDirectThread, error) {
	if m.GetDirectThreadFunc != nil {
		return m.GetDirectThreadFunc(ctx, threadID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockChatRepository) IsThreadParticipant(ctx context.Context, threadID, userID uuid.UUID) (bool, error) {
	if m.IsThreadParticipantFunc != nil {
		return m.IsThreadParticipantFunc(ctx, threadID, userID)
	}
	return false, nil
}

// mockPusher records emitted notification payloads
type mockPusher struct {
	pushed []events.NotificationPayload
}

func (p *mockPusher) EmitNotification(userID uuid.UUID, payload events.NotificationPayload) {
	p.pushed = append(p.pushed, payload)
}

// mockInvalidator records unread-cache invalidations
type mockInvalidator struct {
	invalidated []uuid.UUID
}

func (i *mockInvalidator) InvalidateUnreadCount(ctx context.Context, userID uuid.UUID) {
	i.invalidated = append(i.invalidated, userID)
}

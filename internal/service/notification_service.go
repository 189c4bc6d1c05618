package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"realtime-service/internal/domain"
	"realtime-service/internal/metrics"
	"realtime-service/internal/repository"
)

// PaginatedNotifications is one page of a user's notifications
type PaginatedNotifications struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	HasMore       bool                  `json:"hasMore"`
}

// UnreadCount is the cached unread counter shape
type UnreadCount struct {
	Count int64 `json:"count"`
}

// NotificationService is the read/maintenance side of notifications:
// listing, read state, deletion, the redis-backed unread counter and
// preference management. Creation goes through the Dispatcher.
type NotificationService struct {
	repo    repository.NotificationRepository
	prefs   repository.PreferenceRepository
	redis   *redis.Client
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewNotificationService(
	repo repository.NotificationRepository,
	prefs repository.PreferenceRepository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &NotificationService{
		repo:    repo,
		prefs:   prefs,
		redis:   redisClient,
		ttl:     cacheTTL,
		logger:  logger,
		metrics: m,
	}
}

// GetNotifications returns one page of the user's notifications
func (s *NotificationService) GetNotifications(ctx context.Context, userID, tenantID uuid.UUID, page, limit int, unreadOnly bool) (*PaginatedNotifications, error) {
	notifications, total, err := s.repo.ListForUser(ctx, userID, tenantID, page, limit, unreadOnly)
	if err != nil {
		return nil, err
	}

	return &PaginatedNotifications{
		Notifications: notifications,
		Total:         total,
		Page:          page,
		Limit:         limit,
		HasMore:       int64(page*limit) < total,
	}, nil
}

func unreadCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("unread:%s", userID.String())
}

// GetUnreadCount reads the unread counter, redis-cached with a short
// TTL. Cache misses and redis failures fall through to the database.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID, tenantID uuid.UUID) (*UnreadCount, error) {
	cacheKey := unreadCacheKey(userID)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Int64()
		if err == nil {
			s.metrics.UnreadCacheHit()
			return &UnreadCount{Count: cached}, nil
		}
		s.metrics.UnreadCacheMiss()
	}

	count, err := s.repo.UnreadCount(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, count, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to cache unread count", zap.Error(err))
		}
	}

	return &UnreadCount{Count: count}, nil
}

// InvalidateUnreadCount drops the cached counter after any write that
// changes read state. Implements the dispatcher's UnreadInvalidator.
func (s *NotificationService) InvalidateUnreadCount(ctx context.Context, userID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, unreadCacheKey(userID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate unread cache",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

// MarkAsRead stamps one notification read
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error) {
	notification, err := s.repo.MarkAsRead(ctx, id, userID, tenantID)
	if err != nil {
		return nil, err
	}
	s.InvalidateUnreadCount(ctx, userID)
	return notification, nil
}

// MarkAllAsRead stamps every unread notification of the user read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID, tenantID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllAsRead(ctx, userID, tenantID)
	if err != nil {
		return 0, err
	}
	s.InvalidateUnreadCount(ctx, userID)
	return count, nil
}

// DeleteNotification removes one notification owned by the user
func (s *NotificationService) DeleteNotification(ctx context.Context, id, userID, tenantID uuid.UUID) (bool, error) {
	deleted, wasUnread, err := s.repo.Delete(ctx, id, userID, tenantID)
	if err != nil {
		return false, err
	}
	if deleted && wasUnread {
		s.InvalidateUnreadCount(ctx, userID)
	}
	return deleted, nil
}

// GetPreferences returns the user's preferences, materialized with
// all-notify defaults when no row exists.
func (s *NotificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	return s.prefs.GetOrDefaults(ctx, userID)
}

// UpdatePreferences applies a partial preference change
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, update domain.PreferenceUpdate) (*domain.NotificationPreference, error) {
	return s.prefs.Upsert(ctx, userID, update)
}

// CleanupOldNotifications deletes read notifications past retention
func (s *NotificationService) CleanupOldNotifications(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOld(ctx, retentionDays)
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"realtime-service/internal/domain"
)

// NotificationRepository defines the interface for notification persistence.
// Every per-user read path is tenant-filtered: a record is visible when
// its tenant matches the caller's or is null (system-wide notice).
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByIDForUser(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID, tenantID uuid.UUID, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error)
	UnreadCount(ctx context.Context, userID, tenantID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID, tenantID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID, tenantID uuid.UUID) (deleted bool, wasUnread bool, err error)
	CleanupOld(ctx context.Context, daysOld int) (int64, error)
}

// notificationRepositoryImpl is the GORM implementation of NotificationRepository
type notificationRepositoryImpl struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

// visibleTo scopes a query to one user's notifications within a tenant,
// keeping null-tenant system notices visible.
func (r *notificationRepositoryImpl) visibleTo(db *gorm.DB, ctx context.Context, userID, tenantID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND (tenant_id = ? OR tenant_id IS NULL)", userID, tenantID)
}

// Create persists a new notification
func (r *notificationRepositoryImpl) Create(ctx context.Context, notification *domain.Notification) error {
	db, err := conn(r.db)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(notification).Error
}

// GetByIDForUser fetches one notification owned by the user
func (r *notificationRepositoryImpl) GetByIDForUser(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error) {
	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	var notification domain.Notification
	err = r.visibleTo(db, ctx, userID, tenantID).
		Where("id = ?", id).
		First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListForUser returns one page of the user's notifications, newest
// first, with the total count for pagination.
func (r *notificationRepositoryImpl) ListForUser(ctx context.Context, userID, tenantID uuid.UUID, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error) {
	db, err := conn(r.db)
	if err != nil {
		return nil, 0, err
	}
	var notifications []domain.Notification
	var total int64

	query := r.visibleTo(db, ctx, userID, tenantID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// UnreadCount counts the user's unread notifications
func (r *notificationRepositoryImpl) UnreadCount(ctx context.Context, userID, tenantID uuid.UUID) (int64, error) {
	db, err := conn(r.db)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.visibleTo(db, ctx, userID, tenantID).
		Where("read_at IS NULL").
		Count(&count).Error
	return count, err
}

// MarkAsRead stamps read_at on one notification. Marking an already
// read notification is a no-op returning the record unchanged.
func (r *notificationRepositoryImpl) MarkAsRead(ctx context.Context, id, userID, tenantID uuid.UUID) (*domain.Notification, error) {
	notification, err := r.GetByIDForUser(ctx, id, userID, tenantID)
	if err != nil {
		return nil, err
	}

	if notification.ReadAt != nil {
		return notification, nil
	}

	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("read_at", now).Error; err != nil {
		return nil, err
	}

	notification.ReadAt = &now
	return notification, nil
}

// MarkAllAsRead stamps read_at on every unread notification of the user
func (r *notificationRepositoryImpl) MarkAllAsRead(ctx context.Context, userID, tenantID uuid.UUID) (int64, error) {
	db, err := conn(r.db)
	if err != nil {
		return 0, err
	}
	result := r.visibleTo(db, ctx, userID, tenantID).
		Where("read_at IS NULL").
		Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}

// Delete removes one notification owned by the user. Reports whether a
// record was deleted and whether it was still unread, so callers can
// invalidate unread-count caches.
func (r *notificationRepositoryImpl) Delete(ctx context.Context, id, userID, tenantID uuid.UUID) (bool, bool, error) {
	notification, err := r.GetByIDForUser(ctx, id, userID, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, false, nil
		}
		return false, false, err
	}

	wasUnread := !notification.IsRead()

	db, err := conn(r.db)
	if err != nil {
		return false, false, err
	}
	if err := db.WithContext(ctx).Delete(notification).Error; err != nil {
		return false, false, err
	}

	return true, wasUnread, nil
}

// CleanupOld deletes read notifications older than daysOld days
func (r *notificationRepositoryImpl) CleanupOld(ctx context.Context, daysOld int) (int64, error) {
	db, err := conn(r.db)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	result := db.WithContext(ctx).
		Where("read_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&domain.Notification{})
	return result.RowsAffected, result.Error
}

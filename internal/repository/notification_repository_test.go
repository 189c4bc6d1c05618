package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"realtime-service/internal/domain"
)

func newNotification(tenantID *uuid.UUID, userID uuid.UUID, read bool, age time.Duration) *domain.Notification {
	n := &domain.Notification{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    userID,
		Type:      domain.NotificationTaskAssigned,
		Title:     "Task assigned to you",
		CreatedAt: time.Now().Add(-age),
	}
	if read {
		readAt := time.Now().Add(-age / 2)
		n.ReadAt = &readAt
	}
	return n
}

func TestNotificationVisibilityIsTenantFiltered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()
	user := uuid.New()

	ownRecord := newNotification(&tenantA, user, false, time.Minute)
	foreignRecord := newNotification(&tenantB, user, false, time.Minute)
	systemRecord := newNotification(nil, user, false, time.Minute)

	require.NoError(t, repo.Create(ctx, ownRecord))
	require.NoError(t, repo.Create(ctx, foreignRecord))
	require.NoError(t, repo.Create(ctx, systemRecord))

	// Own-tenant and system-wide records are visible, the foreign
	// tenant's record is not, even though the user id matches.
	list, total, err := repo.ListForUser(ctx, user, tenantA, 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, n := range list {
		assert.NotEqual(t, foreignRecord.ID, n.ID)
	}

	_, err = repo.GetByIDForUser(ctx, foreignRecord.ID, user, tenantA)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	systemFetched, err := repo.GetByIDForUser(ctx, systemRecord.ID, user, tenantA)
	require.NoError(t, err)
	assert.Nil(t, systemFetched.TenantID)
}

func TestListForUserPaginationAndUnreadFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	tenant := uuid.New()
	user := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newNotification(&tenant, user, i%2 == 0, time.Duration(i)*time.Minute)))
	}

	page1, total, err := repo.ListForUser(ctx, user, tenant, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)
	// Newest first
	assert.True(t, page1[0].CreatedAt.After(page1[1].CreatedAt))

	unread, unreadTotal, err := repo.ListForUser(ctx, user, tenant, 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unreadTotal)
	for _, n := range unread {
		assert.Nil(t, n.ReadAt)
	}
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	tenant := uuid.New()
	user := uuid.New()
	n := newNotification(&tenant, user, false, time.Minute)
	require.NoError(t, repo.Create(ctx, n))

	first, err := repo.MarkAsRead(ctx, n.ID, user, tenant)
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	second, err := repo.MarkAsRead(ctx, n.ID, user, tenant)
	require.NoError(t, err)
	assert.Equal(t, first.ReadAt.Unix(), second.ReadAt.Unix())

	count, err := repo.UnreadCount(ctx, user, tenant)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkAllAsRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	tenant := uuid.New()
	user := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newNotification(&tenant, user, false, time.Minute)))
	}
	require.NoError(t, repo.Create(ctx, newNotification(&tenant, user, true, time.Minute)))

	updated, err := repo.MarkAllAsRead(ctx, user, tenant)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	count, err := repo.UnreadCount(ctx, user, tenant)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDeleteReportsUnreadState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	tenant := uuid.New()
	user := uuid.New()
	n := newNotification(&tenant, user, false, time.Minute)
	require.NoError(t, repo.Create(ctx, n))

	deleted, wasUnread, err := repo.Delete(ctx, n.ID, user, tenant)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, wasUnread)

	// Deleting again is a clean no-op
	deleted, wasUnread, err = repo.Delete(ctx, n.ID, user, tenant)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.False(t, wasUnread)
}

func TestCleanupOldDeletesOnlyReadRecords(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	tenant := uuid.New()
	user := uuid.New()

	oldRead := newNotification(&tenant, user, true, 100*24*time.Hour)
	oldUnread := newNotification(&tenant, user, false, 100*24*time.Hour)
	recentRead := newNotification(&tenant, user, true, time.Hour)

	require.NoError(t, repo.Create(ctx, oldRead))
	require.NoError(t, repo.Create(ctx, oldUnread))
	require.NoError(t, repo.Create(ctx, recentRead))

	deleted, err := repo.CleanupOld(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.ListForUser(ctx, user, tenant, 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

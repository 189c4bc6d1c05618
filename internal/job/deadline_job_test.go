package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/domain"
)

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) GetTasksDueBefore(ctx context.Context, cutoff time.Time) ([]domain.Task, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockTaskRepository) GetAssignees(ctx context.Context, taskID uuid.UUID) ([]domain.User, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockDeadlineNotifier is a mock implementation of DeadlineNotifier
type MockDeadlineNotifier struct {
	mock.Mock
}

func (m *MockDeadlineNotifier) NotifyTaskDeadlineApproaching(ctx context.Context, tenantID, targetUserID, taskID uuid.UUID, taskTitle string, dueDate time.Time) error {
	args := m.Called(ctx, tenantID, targetUserID, taskID, taskTitle, dueDate)
	return args.Error(0)
}

func dueTask(tenantID uuid.UUID, due time.Time) domain.Task {
	return domain.Task{
		ID:        uuid.New(),
		TenantID:  tenantID,
		ProjectID: uuid.New(),
		Title:     "Quarterly report",
		Status:    domain.TaskStatusInProgress,
		DueDate:   &due,
	}
}

func TestDeadlineJobNotifiesEachAssignee(t *testing.T) {
	tasks := new(MockTaskRepository)
	notifier := new(MockDeadlineNotifier)

	tenant := uuid.New()
	task := dueTask(tenant, time.Now().Add(6*time.Hour))
	alice := domain.User{ID: uuid.New(), TenantID: tenant}
	bob := domain.User{ID: uuid.New(), TenantID: tenant}

	tasks.On("GetTasksDueBefore", mock.Anything, mock.Anything).Return([]domain.Task{task}, nil)
	tasks.On("GetAssignees", mock.Anything, task.ID).Return([]domain.User{alice, bob}, nil)
	notifier.On("NotifyTaskDeadlineApproaching", mock.Anything, tenant, alice.ID, task.ID, task.Title, *task.DueDate).Return(nil)
	notifier.On("NotifyTaskDeadlineApproaching", mock.Anything, tenant, bob.ID, task.ID, task.Title, *task.DueDate).Return(nil)

	job := NewDeadlineJob(tasks, notifier, 24*time.Hour, nil, nil)
	job.Run()

	tasks.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestDeadlineJobIsolatesAssigneeLookupFailure(t *testing.T) {
	tasks := new(MockTaskRepository)
	notifier := new(MockDeadlineNotifier)

	tenant := uuid.New()
	broken := dueTask(tenant, time.Now().Add(6*time.Hour))
	healthy := dueTask(tenant, time.Now().Add(12*time.Hour))
	assignee := domain.User{ID: uuid.New(), TenantID: tenant}

	tasks.On("GetTasksDueBefore", mock.Anything, mock.Anything).Return([]domain.Task{broken, healthy}, nil)
	tasks.On("GetAssignees", mock.Anything, broken.ID).Return(nil, errors.New("connection refused"))
	tasks.On("GetAssignees", mock.Anything, healthy.ID).Return([]domain.User{assignee}, nil)
	notifier.On("NotifyTaskDeadlineApproaching", mock.Anything, tenant, assignee.ID, healthy.ID, healthy.Title, *healthy.DueDate).Return(nil)

	job := NewDeadlineJob(tasks, notifier, 24*time.Hour, nil, nil)
	job.Run()

	// The healthy task still gets its notification
	tasks.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestDeadlineJobContinuesAfterDispatchFailure(t *testing.T) {
	tasks := new(MockTaskRepository)
	notifier := new(MockDeadlineNotifier)

	tenant := uuid.New()
	task := dueTask(tenant, time.Now().Add(6*time.Hour))
	alice := domain.User{ID: uuid.New(), TenantID: tenant}
	bob := domain.User{ID: uuid.New(), TenantID: tenant}

	tasks.On("GetTasksDueBefore", mock.Anything, mock.Anything).Return([]domain.Task{task}, nil)
	tasks.On("GetAssignees", mock.Anything, task.ID).Return([]domain.User{alice, bob}, nil)
	notifier.On("NotifyTaskDeadlineApproaching", mock.Anything, tenant, alice.ID, task.ID, task.Title, *task.DueDate).Return(errors.New("db write failed"))
	notifier.On("NotifyTaskDeadlineApproaching", mock.Anything, tenant, bob.ID, task.ID, task.Title, *task.DueDate).Return(nil)

	job := NewDeadlineJob(tasks, notifier, 24*time.Hour, nil, nil)
	job.Run()

	notifier.AssertExpectations(t)
}

func TestDeadlineJobStopsOnListFailure(t *testing.T) {
	tasks := new(MockTaskRepository)
	notifier := new(MockDeadlineNotifier)

	tasks.On("GetTasksDueBefore", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	job := NewDeadlineJob(tasks, notifier, 24*time.Hour, nil, nil)
	job.Run()

	notifier.AssertNotCalled(t, "NotifyTaskDeadlineApproaching",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// MockNotificationCleaner is a mock implementation of NotificationCleaner
type MockNotificationCleaner struct {
	mock.Mock
}

func (m *MockNotificationCleaner) CleanupOldNotifications(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

func TestCleanupJobUsesConfiguredRetention(t *testing.T) {
	cleaner := new(MockNotificationCleaner)
	cleaner.On("CleanupOldNotifications", mock.Anything, 30).Return(int64(12), nil)

	job := NewCleanupJob(cleaner, 30, nil)
	job.Run()

	cleaner.AssertExpectations(t)
}

func TestCleanupJobDefaultsRetention(t *testing.T) {
	cleaner := new(MockNotificationCleaner)
	cleaner.On("CleanupOldNotifications", mock.Anything, 90).Return(int64(0), nil)

	job := NewCleanupJob(cleaner, 0, nil)
	job.Run()

	cleaner.AssertExpectations(t)
}

func TestCleanupJobSwallowsError(t *testing.T) {
	cleaner := new(MockNotificationCleaner)
	cleaner.On("CleanupOldNotifications", mock.Anything, 90).Return(int64(0), errors.New("connection refused"))

	job := NewCleanupJob(cleaner, 90, nil)

	require.NotPanics(t, job.Run)
	cleaner.AssertExpectations(t)
}

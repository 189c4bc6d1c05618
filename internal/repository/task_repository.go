package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"realtime-service/internal/domain"
)

// TaskRepository reads the task tables owned by the board service. Only
// the deadline sweep queries them.
type TaskRepository interface {
	GetTasksDueBefore(ctx context.Context, cutoff time.Time) ([]domain.Task, error)
	GetAssignees(ctx context.Context, taskID uuid.UUID) ([]domain.User, error)
}

type taskRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepositoryImpl{db: db}
}

// GetTasksDueBefore returns incomplete tasks with a due date at or
// before the cutoff. Overdue tasks are included until they complete.
func (r *taskRepositoryImpl) GetTasksDueBefore(ctx context.Context, cutoff time.Time) ([]domain.Task, error) {
	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	err = db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date <= ? AND status <> ?", cutoff, domain.TaskStatusDone).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetAssignees returns the users assigned to a task
func (r *taskRepositoryImpl) GetAssignees(ctx context.Context, taskID uuid.UUID) ([]domain.User, error) {
	db, err := conn(r.db)
	if err != nil {
		return nil, err
	}
	var users []domain.User
	err = db.WithContext(ctx).
		Model(&domain.User{}).
		Joins("JOIN task_assignees ON task_assignees.user_id = users.id").
		Where("task_assignees.task_id = ?", taskID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

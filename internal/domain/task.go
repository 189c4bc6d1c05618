package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus mirrors the status enum owned by the task service
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Task is a read-only projection of the task table, queried by the
// deadline sweep. Only the columns this service reads are mapped.
type Task struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_tenant_id" json:"tenant_id"`
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index:idx_tasks_project_id" json:"project_id"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	Status    TaskStatus `gorm:"type:varchar(50);not null" json:"status"`
	DueDate   *time.Time `gorm:"type:timestamp;index:idx_tasks_due_date" json:"due_date"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TaskAssignee is a read-only projection of the task assignee join table
type TaskAssignee struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID uuid.UUID `gorm:"type:uuid;not null;index:idx_task_assignees_task_id" json:"task_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_task_assignees_user_id" json:"user_id"`
}

// TableName specifies the table name for TaskAssignee
func (TaskAssignee) TableName() string {
	return "task_assignees"
}

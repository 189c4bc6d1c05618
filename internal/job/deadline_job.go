package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"realtime-service/internal/metrics"
	"realtime-service/internal/repository"
)

// DeadlineNotifier dispatches one deadline warning. Satisfied by
// *service.Dispatcher.
type DeadlineNotifier interface {
	NotifyTaskDeadlineApproaching(ctx context.Context, tenantID, targetUserID, taskID uuid.UUID, taskTitle string, dueDate time.Time) error
}

// DeadlineJob scans for tasks due within the lookahead window and
// notifies each assignee with the task's own tenant as context. One
// run handles each task independently: a bad task or assignee lookup
// is logged and skipped, never aborting the rest of the sweep.
type DeadlineJob struct {
	tasks     repository.TaskRepository
	notifier  DeadlineNotifier
	lookahead time.Duration
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewDeadlineJob creates a new DeadlineJob instance
func NewDeadlineJob(
	tasks repository.TaskRepository,
	notifier DeadlineNotifier,
	lookahead time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *DeadlineJob {
	if lookahead <= 0 {
		lookahead = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlineJob{
		tasks:     tasks,
		notifier:  notifier,
		lookahead: lookahead,
		logger:    logger,
		metrics:   m,
	}
}

// Run executes one deadline sweep
func (j *DeadlineJob) Run() {
	ctx := context.Background()
	j.metrics.DeadlineSweepRun()

	cutoff := time.Now().Add(j.lookahead)
	tasks, err := j.tasks.GetTasksDueBefore(ctx, cutoff)
	if err != nil {
		j.metrics.DeadlineSweepFailure()
		j.logger.Error("deadline sweep failed to list due tasks", zap.Error(err))
		return
	}

	if len(tasks) == 0 {
		j.logger.Debug("deadline sweep found no due tasks")
		return
	}

	notified := 0
	failed := 0
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}

		assignees, err := j.tasks.GetAssignees(ctx, task.ID)
		if err != nil {
			failed++
			j.logger.Error("failed to fetch assignees for due task",
				zap.String("task_id", task.ID.String()),
				zap.Error(err))
			continue
		}

		for _, assignee := range assignees {
			err := j.notifier.NotifyTaskDeadlineApproaching(
				ctx, task.TenantID, assignee.ID, task.ID, task.Title, *task.DueDate)
			if err != nil {
				failed++
				j.logger.Error("failed to dispatch deadline notification",
					zap.String("task_id", task.ID.String()),
					zap.String("user_id", assignee.ID.String()),
					zap.Error(err))
				continue
			}
			notified++
		}
	}

	if failed > 0 {
		j.metrics.DeadlineSweepFailure()
	}
	j.logger.Info("deadline sweep completed",
		zap.Int("due_tasks", len(tasks)),
		zap.Int("notified", notified),
		zap.Int("failed", failed))
}

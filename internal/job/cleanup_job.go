package job

import (
	"context"

	"go.uber.org/zap"
)

// NotificationCleaner deletes old read notifications. Satisfied by
// *service.NotificationService.
type NotificationCleaner interface {
	CleanupOldNotifications(ctx context.Context, retentionDays int) (int64, error)
}

// CleanupJob prunes read notifications past the retention window
type CleanupJob struct {
	cleaner       NotificationCleaner
	retentionDays int
	logger        *zap.Logger
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(cleaner NotificationCleaner, retentionDays int, logger *zap.Logger) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupJob{
		cleaner:       cleaner,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Run executes one cleanup pass
func (j *CleanupJob) Run() {
	ctx := context.Background()

	deleted, err := j.cleaner.CleanupOldNotifications(ctx, j.retentionDays)
	if err != nil {
		j.logger.Error("notification cleanup failed", zap.Error(err))
		return
	}

	if deleted > 0 {
		j.logger.Info("notification cleanup completed",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", j.retentionDays))
	}
}

package notification

import (
	"context"
	"time"

	"github.com/socialgraph/socialgraph-api/internal/pkg/logger"
)

const (
	defaultRetentionDays = 90
	// Unread notifications outlive read ones but are not kept forever
	unreadRetentionDays = 180
)

// CleanupJob prunes old notifications on a fixed interval
type CleanupJob struct {
	repo          Repository
	retentionDays int
	now           func() time.Time
}

// NewCleanupJob keeps read notifications for retentionDays
func NewCleanupJob(repo Repository, retentionDays int) *CleanupJob {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &CleanupJob{repo: repo, retentionDays: retentionDays, now: time.Now}
}

// Start runs one pass immediately, then every interval until ctx is done
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		read, unread, err := j.RunOnce(ctx)
		switch {
		case err != nil:
			logger.LogError(ctx, err, "notification cleanup failed")
		case read+unread > 0:
			logger.LogInfo(ctx, "notification cleanup",
				"deleted_read", read,
				"deleted_unread", unread,
				"retention_days", j.retentionDays,
			)
		}

		select {
		case <-ctx.Done():
			logger.LogInfo(ctx, "notification cleanup stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce deletes read notifications past retention, then anything past the unread limit
func (j *CleanupJob) RunOnce(ctx context.Context) (read, unread int64, err error) {
	now := j.now()

	read, err = j.repo.DeleteReadOlderThan(ctx, now.AddDate(0, 0, -j.retentionDays))
	if err != nil {
		return 0, 0, err
	}

	unread, err = j.repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -unreadRetentionDays))
	if err != nil {
		return read, 0, err
	}
	return read, unread, nil
}

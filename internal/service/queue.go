package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hubcast/hubcast/internal/models"
)

// QueueStore owns the sync_jobs table. All job state transitions go through
// here; nothing else mutates a job row.
type QueueStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewQueueStore(db *gorm.DB, logger *zap.Logger) *QueueStore {
	return &QueueStore{db: db, logger: logger}
}

// Enqueue persists a new pending job and returns it with its id and
// idempotency key assigned.
func (q *QueueStore) Enqueue(job *models.SyncJob) error {
	if job.UUID == "" {
		job.UUID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = 3
	}
	if job.ScheduledAt == nil {
		now := time.Now()
		job.ScheduledAt = &now
	}

	if err := q.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// ClaimDue selects due pending jobs ordered by priority then age, and
// claims each with a single conditional update keyed by id and current
// status. A row another scheduler instance claimed first is simply skipped,
// so two concurrent claimers never return overlapping jobs.
func (q *QueueStore) ClaimDue(limit int) ([]models.SyncJob, error) {
	now := time.Now()

	var candidates []models.SyncJob
	err := q.db.
		Where("status = ? AND (scheduled_at IS NULL OR scheduled_at <= ?) AND attempts < max_attempts",
			models.JobStatusPending, now).
		Order("priority ASC, created_at ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select due jobs: %w", err)
	}

	claimed := make([]models.SyncJob, 0, len(candidates))
	for _, job := range candidates {
		res := q.db.Model(&models.SyncJob{}).
			Where("id = ? AND status = ?", job.ID, models.JobStatusPending).
			Updates(map[string]any{
				"status":     models.JobStatusProcessing,
				"attempts":   gorm.Expr("attempts + 1"),
				"started_at": now,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to claim job %d: %w", job.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent claimer.
			continue
		}

		job.Status = models.JobStatusProcessing
		job.Attempts++
		job.StartedAt = &now
		claimed = append(claimed, job)
	}

	return claimed, nil
}

// MarkCompleted records terminal success.
func (q *QueueStore) MarkCompleted(id uint) error {
	now := time.Now()
	return q.transition(id, models.JobStatusProcessing, map[string]any{
		"status":       models.JobStatusCompleted,
		"completed_at": now,
	})
}

// MarkRetry returns a transiently failed job to the pending pool. It
// becomes eligible again on the next scheduling pass.
func (q *QueueStore) MarkRetry(id uint) error {
	return q.transition(id, models.JobStatusProcessing, map[string]any{
		"status": models.JobStatusPending,
	})
}

// MarkFailed records terminal failure after the attempt budget is spent or
// a non-retryable error occurred.
func (q *QueueStore) MarkFailed(id uint) error {
	now := time.Now()
	return q.transition(id, models.JobStatusProcessing, map[string]any{
		"status":       models.JobStatusFailed,
		"completed_at": now,
	})
}

func (q *QueueStore) transition(id uint, from string, updates map[string]any) error {
	res := q.db.Model(&models.SyncJob{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update job %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %d is not in state %s", id, from)
	}
	return nil
}

// Get loads a single job.
func (q *QueueStore) Get(id uint) (*models.SyncJob, error) {
	var job models.SyncJob
	if err := q.db.First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ReleaseAbandoned recovers jobs a crashed worker left in processing past
// the grace period: those with attempts remaining go back to pending,
// those out of attempts fail terminally. Attempts were already counted at
// claim time, so repeated abandonment cannot loop forever.
func (q *QueueStore) ReleaseAbandoned(grace time.Duration) (int64, error) {
	cutoff := time.Now().Add(-grace)

	failed := q.db.Model(&models.SyncJob{}).
		Where("status = ? AND started_at < ? AND attempts >= max_attempts", models.JobStatusProcessing, cutoff).
		Updates(map[string]any{
			"status":       models.JobStatusFailed,
			"completed_at": time.Now(),
		})
	if failed.Error != nil {
		return 0, fmt.Errorf("failed to fail abandoned jobs: %w", failed.Error)
	}

	released := q.db.Model(&models.SyncJob{}).
		Where("status = ? AND started_at < ?", models.JobStatusProcessing, cutoff).
		Update("status", models.JobStatusPending)
	if released.Error != nil {
		return 0, fmt.Errorf("failed to release abandoned jobs: %w", released.Error)
	}

	total := failed.RowsAffected + released.RowsAffected
	if total > 0 {
		q.logger.Warn("Recovered abandoned jobs",
			zap.Int64("released", released.RowsAffected),
			zap.Int64("failed", failed.RowsAffected))
	}
	return total, nil
}

// PurgeTerminalOlderThan deletes completed and failed jobs older than the
// horizon. Active rows are never touched.
func (q *QueueStore) PurgeTerminalOlderThan(horizon time.Duration) (int64, error) {
	cutoff := time.Now().Add(-horizon)
	res := q.db.
		Where("created_at < ? AND status IN ?", cutoff,
			[]string{models.JobStatusCompleted, models.JobStatusFailed}).
		Delete(&models.SyncJob{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hubcast/hubcast/internal/models"
)

// ErrLogNotFound is returned when a retry references a log entry that does
// not exist.
var ErrLogNotFound = errors.New("syndication log not found")

// LogService maintains the syndication audit trail and the read models
// built on top of it.
type LogService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewLogService(db *gorm.DB, logger *zap.Logger) *LogService {
	return &LogService{db: db, logger: logger}
}

// RecordQueued creates the current log entry for a job at enqueue time.
func (s *LogService) RecordQueued(contentID, platform string, jobID uint, scheduledAt *time.Time) (*models.SyndicationLog, error) {
	entry := &models.SyndicationLog{
		ContentID:   contentID,
		Platform:    platform,
		JobID:       &jobID,
		Status:      models.LogStatusQueued,
		ScheduledAt: scheduledAt,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record log entry: %w", err)
	}
	return entry, nil
}

// Outcome describes the result of one delivery attempt.
type Outcome struct {
	Status       string
	ExternalID   string
	ExternalURL  string
	ResponseData string
	ErrorMessage string
	Attempts     int
}

// RecordOutcome updates the job's current log entry in place. Success sets
// the synced timestamp; retrying and failed keep the error visible while
// the history endpoint is polled.
func (s *LogService) RecordOutcome(jobID uint, outcome Outcome) error {
	updates := map[string]any{
		"status":   outcome.Status,
		"attempts": outcome.Attempts,
	}
	if outcome.ExternalID != "" {
		updates["external_id"] = outcome.ExternalID
	}
	if outcome.ExternalURL != "" {
		updates["external_url"] = outcome.ExternalURL
	}
	if outcome.ResponseData != "" {
		updates["response_data"] = outcome.ResponseData
	}
	if outcome.ErrorMessage != "" {
		updates["error_message"] = outcome.ErrorMessage
	}
	if outcome.Status == models.LogStatusSuccess {
		updates["synced_at"] = time.Now()
	}

	res := s.db.Model(&models.SyndicationLog{}).
		Where("job_id = ?", jobID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to record outcome: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: job %d", ErrLogNotFound, jobID)
	}
	return nil
}

// Get loads a single log entry.
func (s *LogService) Get(id uint) (*models.SyndicationLog, error) {
	var entry models.SyndicationLog
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrLogNotFound, id)
		}
		return nil, err
	}
	return &entry, nil
}

// MarkRetrying re-arms a failed log entry for a manual retry.
func (s *LogService) MarkRetrying(id uint, jobID uint) error {
	res := s.db.Model(&models.SyndicationLog{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   models.LogStatusRetrying,
			"attempts": 0,
			"job_id":   jobID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to re-arm log entry: %w", res.Error)
	}
	return nil
}

// History returns all log entries for a content item, newest first. It
// reflects the latest known status even while a job is mid-retry.
func (s *LogService) History(contentID string) ([]models.SyndicationLog, error) {
	var entries []models.SyndicationLog
	err := s.db.
		Where("content_id = ?", contentID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

// List returns filtered log entries for the logs endpoint.
func (s *LogService) List(contentID, platform, status string, limit int) ([]models.SyndicationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.Order("created_at DESC").Limit(limit)
	if contentID != "" {
		query = query.Where("content_id = ?", contentID)
	}
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var entries []models.SyndicationLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return entries, nil
}

// Stats summarizes delivery outcomes over a window.
type Stats struct {
	Platform    string  `json:"platform,omitempty"`
	Total       int64   `json:"total"`
	Success     int64   `json:"success"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
	AvgAttempts float64 `json:"avg_attempts"`
}

// AggregateStats computes totals and the success rate over the last
// windowDays days, optionally restricted to one platform. The rate is a
// percentage rounded to two decimals; an empty window reports 0.
func (s *LogService) AggregateStats(platform string, windowDays int) (*Stats, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	query := s.db.Model(&models.SyndicationLog{}).Where("created_at >= ?", since)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var row struct {
		Total       int64
		Success     int64
		Failed      int64
		AvgAttempts float64
	}
	err := query.
		Select("COUNT(*) as total, " +
			"SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END) as success, " +
			"SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) as failed, " +
			"COALESCE(AVG(attempts), 0) as avg_attempts").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	stats := &Stats{
		Platform:    platform,
		Total:       row.Total,
		Success:     row.Success,
		Failed:      row.Failed,
		AvgAttempts: round2(row.AvgAttempts),
	}
	if row.Total > 0 {
		stats.SuccessRate = round2(float64(row.Success) / float64(row.Total) * 100)
	}
	return stats, nil
}

// PlatformStats returns the per-platform breakdown over a window.
func (s *LogService) PlatformStats(windowDays int) ([]Stats, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	var rows []struct {
		Platform    string
		Total       int64
		Success     int64
		Failed      int64
		AvgAttempts float64
	}
	err := s.db.Model(&models.SyndicationLog{}).
		Where("created_at >= ?", since).
		Select("platform, COUNT(*) as total, " +
			"SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END) as success, " +
			"SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) as failed, " +
			"COALESCE(AVG(attempts), 0) as avg_attempts").
		Group("platform").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate platform stats: %w", err)
	}

	stats := make([]Stats, 0, len(rows))
	for _, row := range rows {
		entry := Stats{
			Platform:    row.Platform,
			Total:       row.Total,
			Success:     row.Success,
			Failed:      row.Failed,
			AvgAttempts: round2(row.AvgAttempts),
		}
		if row.Total > 0 {
			entry.SuccessRate = round2(float64(row.Success) / float64(row.Total) * 100)
		}
		stats = append(stats, entry)
	}
	return stats, nil
}

// PurgeTerminalOlderThan deletes success/failed log entries older than the
// horizon.
func (s *LogService) PurgeTerminalOlderThan(horizon time.Duration) (int64, error) {
	cutoff := time.Now().Add(-horizon)
	res := s.db.
		Where("created_at < ? AND status IN ?", cutoff,
			[]string{models.LogStatusSuccess, models.LogStatusFailed}).
		Delete(&models.SyndicationLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

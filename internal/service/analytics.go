package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hubcast/hubcast/internal/models"
	"github.com/hubcast/hubcast/internal/platform"
)

const (
	// collectWindow bounds how far back a collection pass looks. Metrics
	// stabilize within a day of delivery; older items are not re-polled.
	collectWindow = 24 * time.Hour
	collectLimit  = 50
)

// AnalyticsService polls engagement metrics for recently delivered items
// from platforms that expose them.
type AnalyticsService struct {
	db       *gorm.DB
	configs  *PlatformConfigService
	registry *platform.Registry
	logger   *zap.Logger
}

func NewAnalyticsService(db *gorm.DB, configs *PlatformConfigService, registry *platform.Registry, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		db:       db,
		configs:  configs,
		registry: registry,
		logger:   logger,
	}
}

// Collect polls metrics for successful deliveries synced within the last
// day. Platforms without an analytics capability are skipped silently; a
// failing platform only loses its own samples.
func (s *AnalyticsService) Collect(ctx context.Context) (int, error) {
	since := time.Now().Add(-collectWindow)

	var entries []models.SyndicationLog
	err := s.db.
		Where("status = ? AND external_id != '' AND synced_at >= ?", models.LogStatusSuccess, since).
		Order("synced_at DESC").
		Limit(collectLimit).
		Find(&entries).Error
	if err != nil {
		return 0, fmt.Errorf("failed to select delivered items: %w", err)
	}

	collected := 0
	for _, entry := range entries {
		n, err := s.collectOne(ctx, &entry)
		if err != nil {
			s.logger.Warn("Metrics collection failed",
				zap.String("platform", entry.Platform),
				zap.String("external_id", entry.ExternalID),
				zap.Error(err))
			continue
		}
		collected += n
	}

	if collected > 0 {
		s.logger.Info("Metrics collected", zap.Int("samples", collected))
	}
	return collected, nil
}

func (s *AnalyticsService) collectOne(ctx context.Context, entry *models.SyndicationLog) (int, error) {
	credentials, err := s.configs.Active(entry.Platform)
	if err != nil {
		return 0, err
	}
	if credentials == nil {
		return 0, nil
	}

	adapter, err := s.registry.Create(entry.Platform, credentials)
	if err != nil {
		return 0, err
	}

	provider, ok := adapter.(platform.AnalyticsProvider)
	if !ok {
		return 0, nil
	}

	metrics, err := provider.Analytics(ctx, entry.ExternalID)
	if err != nil {
		return 0, err
	}

	raw, _ := json.Marshal(metrics)
	today := time.Now().Truncate(24 * time.Hour)

	stored := 0
	for metric, value := range metrics {
		sample := models.AnalyticsSample{
			ContentID:    entry.ContentID,
			Platform:     entry.Platform,
			MetricType:   metric,
			MetricValue:  value,
			DateRecorded: today,
			RawData:      string(raw),
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "content_id"}, {Name: "platform"},
				{Name: "metric_type"}, {Name: "date_recorded"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"metric_value", "raw_data"}),
		}).Create(&sample).Error
		if err != nil {
			return stored, fmt.Errorf("failed to store sample: %w", err)
		}
		stored++
	}
	return stored, nil
}

// Metrics returns the stored samples for one content item, newest first.
func (s *AnalyticsService) Metrics(contentID string) ([]models.AnalyticsSample, error) {
	var samples []models.AnalyticsSample
	err := s.db.
		Where("content_id = ?", contentID).
		Order("date_recorded DESC, platform ASC").
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}
	return samples, nil
}

// PurgeOlderThan deletes samples past the retention horizon.
func (s *AnalyticsService) PurgeOlderThan(horizon time.Duration) (int64, error) {
	cutoff := time.Now().Add(-horizon)
	res := s.db.Where("date_recorded < ?", cutoff).Delete(&models.AnalyticsSample{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge samples: %w", res.Error)
	}
	return res.RowsAffected, nil
}

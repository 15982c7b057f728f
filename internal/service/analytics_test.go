package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/models"
	"github.com/hubcast/hubcast/internal/platform"
)

// metricsAdapter returns canned engagement numbers.
type metricsAdapter struct {
	scriptedAdapter
	metrics map[string]int64
}

func (a *metricsAdapter) Analytics(context.Context, string) (map[string]int64, error) {
	return a.metrics, nil
}

func newAnalyticsEnv(t *testing.T, metrics map[string]int64) (*AnalyticsService, *LogService) {
	t.Helper()

	db := newTestDB(t)
	logger := zap.NewNop()

	configs := NewPlatformConfigService(db, logger)
	if err := configs.Save(formatter.PlatformMicroblog, "", microblogCredentials()); err != nil {
		t.Fatalf("Save config: %v", err)
	}

	registry := platform.NewRegistry(logger)
	err := registry.Register(formatter.PlatformMicroblog, func(*zap.Logger, map[string]string) platform.Adapter {
		return &metricsAdapter{
			scriptedAdapter: scriptedAdapter{script: &adapterScript{}},
			metrics:         metrics,
		}
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	return NewAnalyticsService(db, configs, registry, logger), NewLogService(db, logger)
}

func recordDelivered(t *testing.T, logs *LogService, contentID string, jobID uint) {
	t.Helper()
	if _, err := logs.RecordQueued(contentID, formatter.PlatformMicroblog, jobID, nil); err != nil {
		t.Fatalf("RecordQueued: %v", err)
	}
	err := logs.RecordOutcome(jobID, Outcome{
		Status:     models.LogStatusSuccess,
		ExternalID: "ext-1",
		Attempts:   1,
	})
	if err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}
}

func TestCollectStoresSamples(t *testing.T) {
	svc, logs := newAnalyticsEnv(t, map[string]int64{"impression_count": 1200, "like_count": 34})
	recordDelivered(t, logs, "101", 1)

	collected, err := svc.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if collected != 2 {
		t.Errorf("collected = %d, want 2", collected)
	}

	samples, err := svc.Metrics("101")
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("sample count = %d, want 2", len(samples))
	}
}

func TestCollectUpsertsSameDay(t *testing.T) {
	svc, logs := newAnalyticsEnv(t, map[string]int64{"like_count": 10})
	recordDelivered(t, logs, "101", 1)

	if _, err := svc.Collect(context.Background()); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if _, err := svc.Collect(context.Background()); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	samples, err := svc.Metrics("101")
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(samples) != 1 {
		t.Errorf("sample count = %d, want 1 after upsert", len(samples))
	}
}

func TestCollectSkipsPlatformsWithoutAnalytics(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()

	configs := NewPlatformConfigService(db, logger)
	if err := configs.Save(formatter.PlatformMicroblog, "", microblogCredentials()); err != nil {
		t.Fatalf("Save config: %v", err)
	}

	// Register an adapter with no analytics capability.
	registry := platform.NewRegistry(logger)
	err := registry.Register(formatter.PlatformMicroblog, func(*zap.Logger, map[string]string) platform.Adapter {
		return &scriptedAdapter{script: &adapterScript{}}
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	svc := NewAnalyticsService(db, configs, registry, logger)
	logs := NewLogService(db, logger)
	recordDelivered(t, logs, "101", 1)

	collected, err := svc.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if collected != 0 {
		t.Errorf("collected = %d, want 0", collected)
	}
}

func TestPurgeOldSamples(t *testing.T) {
	svc, logs := newAnalyticsEnv(t, map[string]int64{"like_count": 10})
	recordDelivered(t, logs, "101", 1)

	if _, err := svc.Collect(context.Background()); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	old := time.Now().AddDate(-2, 0, 0)
	err := svc.db.Model(&models.AnalyticsSample{}).
		Where("content_id = ?", "101").
		Update("date_recorded", old).Error
	if err != nil {
		t.Fatalf("backdate: %v", err)
	}

	purged, err := svc.PurgeOlderThan(365 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
}

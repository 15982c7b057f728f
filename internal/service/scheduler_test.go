package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
)

func TestSchedulerOptionsDefaults(t *testing.T) {
	var opts SchedulerOptions
	opts.applyDefaults()

	if opts.QueueSpec != "* * * * *" {
		t.Errorf("queue spec = %q", opts.QueueSpec)
	}
	if opts.AbandonAfter != 10*time.Minute {
		t.Errorf("abandon after = %v", opts.AbandonAfter)
	}
	if opts.JobRetention != 90*24*time.Hour {
		t.Errorf("job retention = %v", opts.JobRetention)
	}
	if opts.AnalyticsRetention != 365*24*time.Hour {
		t.Errorf("analytics retention = %v", opts.AnalyticsRetention)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()

	queue := NewQueueStore(db, logger)
	logs := NewLogService(db, logger)
	configs := NewPlatformConfigService(db, logger)
	registry := platform.NewRegistry(logger)
	analytics := NewAnalyticsService(db, configs, registry, logger)
	source := &fakeSource{content: testContent()}

	dispatcher := NewDispatcher(queue, logs, configs, registry, formatter.New(), source, db, logger,
		DispatcherOptions{})

	scheduler := NewScheduler(dispatcher, queue, logs, analytics, logger, SchedulerOptions{})
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The initial queue pass runs against an empty queue without error.
	time.Sleep(50 * time.Millisecond)
	scheduler.Stop()
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()

	queue := NewQueueStore(db, logger)
	logs := NewLogService(db, logger)
	configs := NewPlatformConfigService(db, logger)
	registry := platform.NewRegistry(logger)
	analytics := NewAnalyticsService(db, configs, registry, logger)
	source := &fakeSource{content: testContent()}

	dispatcher := NewDispatcher(queue, logs, configs, registry, formatter.New(), source, db, logger,
		DispatcherOptions{})

	scheduler := NewScheduler(dispatcher, queue, logs, analytics, logger, SchedulerOptions{
		QueueSpec: "not a cron spec",
	})
	if err := scheduler.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron spec")
		scheduler.Stop()
	}
}

package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SchedulerOptions carries the cron specs and retention knobs. Zero values
// fall back to the cadence the system was designed around: a queue pass
// every minute, cleanup daily, metrics hourly.
type SchedulerOptions struct {
	QueueSpec     string
	CleanupSpec   string
	AnalyticsSpec string

	BatchSize    int
	AbandonAfter time.Duration

	JobRetention       time.Duration
	LogRetention       time.Duration
	AnalyticsRetention time.Duration
}

func (o *SchedulerOptions) applyDefaults() {
	if o.QueueSpec == "" {
		o.QueueSpec = "* * * * *"
	}
	if o.CleanupSpec == "" {
		o.CleanupSpec = "0 3 * * *"
	}
	if o.AnalyticsSpec == "" {
		o.AnalyticsSpec = "0 * * * *"
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.AbandonAfter <= 0 {
		o.AbandonAfter = 10 * time.Minute
	}
	if o.JobRetention <= 0 {
		o.JobRetention = 90 * 24 * time.Hour
	}
	if o.LogRetention <= 0 {
		o.LogRetention = 90 * 24 * time.Hour
	}
	if o.AnalyticsRetention <= 0 {
		o.AnalyticsRetention = 365 * 24 * time.Hour
	}
}

// Scheduler drives the recurring passes: queue processing, retention
// cleanup and metrics collection.
type Scheduler struct {
	dispatcher *Dispatcher
	queue      *QueueStore
	logs       *LogService
	analytics  *AnalyticsService
	logger     *zap.Logger
	opts       SchedulerOptions

	cron   *cron.Cron
	cancel context.CancelFunc
}

func NewScheduler(
	dispatcher *Dispatcher,
	queue *QueueStore,
	logs *LogService,
	analytics *AnalyticsService,
	logger *zap.Logger,
	opts SchedulerOptions,
) *Scheduler {
	opts.applyDefaults()
	return &Scheduler{
		dispatcher: dispatcher,
		queue:      queue,
		logs:       logs,
		analytics:  analytics,
		logger:     logger,
		opts:       opts,
	}
}

// Start registers the cron entries and runs one queue pass immediately so a
// restart does not wait out the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.cron = cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	if _, err := s.cron.AddFunc(s.opts.QueueSpec, func() { s.queuePass(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.opts.CleanupSpec, func() { s.cleanupPass() }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.opts.AnalyticsSpec, func() { s.analyticsPass(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("queue", s.opts.QueueSpec),
		zap.String("cleanup", s.opts.CleanupSpec),
		zap.String("analytics", s.opts.AnalyticsSpec))

	go s.queuePass(ctx)
	return nil
}

// Stop halts cron and waits for in-flight entries to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) queuePass(ctx context.Context) {
	if _, err := s.queue.ReleaseAbandoned(s.opts.AbandonAfter); err != nil {
		s.logger.Error("Abandonment sweep failed", zap.Error(err))
	}

	processed, err := s.dispatcher.ProcessDue(ctx, s.opts.BatchSize)
	if err != nil {
		s.logger.Error("Queue pass failed", zap.Error(err))
		return
	}
	if processed > 0 {
		s.logger.Info("Queue pass finished", zap.Int("processed", processed))
	}
}

func (s *Scheduler) cleanupPass() {
	jobs, err := s.queue.PurgeTerminalOlderThan(s.opts.JobRetention)
	if err != nil {
		s.logger.Error("Job cleanup failed", zap.Error(err))
	}
	logs, err := s.logs.PurgeTerminalOlderThan(s.opts.LogRetention)
	if err != nil {
		s.logger.Error("Log cleanup failed", zap.Error(err))
	}
	samples, err := s.analytics.PurgeOlderThan(s.opts.AnalyticsRetention)
	if err != nil {
		s.logger.Error("Metrics cleanup failed", zap.Error(err))
	}

	if jobs+logs+samples > 0 {
		s.logger.Info("Cleanup pass finished",
			zap.Int64("jobs", jobs),
			zap.Int64("logs", logs),
			zap.Int64("samples", samples))
	}
}

func (s *Scheduler) analyticsPass(ctx context.Context) {
	if _, err := s.analytics.Collect(ctx); err != nil {
		s.logger.Error("Metrics collection pass failed", zap.Error(err))
	}
}

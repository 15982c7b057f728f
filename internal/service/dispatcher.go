package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hubcast/hubcast/internal/content"
	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/models"
	"github.com/hubcast/hubcast/internal/platform"
)

// Rejection reasons reported by RequestSync for platforms that never get a
// job.
const (
	ReasonUnknownPlatform = "unknown platform"
	ReasonNotConfigured   = "platform not configured"
	ReasonInvalidContent  = "content not formattable"
)

// SyncRequest asks for one content item to be delivered to a set of
// platforms. An empty platform list targets every registered platform.
type SyncRequest struct {
	ContentID   string     `json:"content_id" binding:"required"`
	Platforms   []string   `json:"platforms"`
	Action      string     `json:"action"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// SyncResult reports the per-platform outcome of a sync request.
type SyncResult struct {
	Platform string `json:"platform"`
	Queued   bool   `json:"queued"`
	JobID    uint   `json:"job_id,omitempty"`
	JobUUID  string `json:"job_uuid,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Dispatcher coordinates the full syndication flow: fetch and format at
// enqueue time, claim and deliver at processing time. Delivery is
// at-least-once; each attempt transition is mirrored into the log table.
type Dispatcher struct {
	queue       *QueueStore
	logs        *LogService
	configs     *PlatformConfigService
	registry    *platform.Registry
	formatter   *formatter.Formatter
	source      content.Source
	logger      *zap.Logger
	db          *gorm.DB
	workers     int
	maxAttempts int
}

type DispatcherOptions struct {
	Workers     int
	MaxAttempts int
}

func NewDispatcher(
	queue *QueueStore,
	logs *LogService,
	configs *PlatformConfigService,
	registry *platform.Registry,
	f *formatter.Formatter,
	source content.Source,
	db *gorm.DB,
	logger *zap.Logger,
	opts DispatcherOptions,
) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &Dispatcher{
		queue:       queue,
		logs:        logs,
		configs:     configs,
		registry:    registry,
		formatter:   f,
		source:      source,
		db:          db,
		logger:      logger,
		workers:     opts.Workers,
		maxAttempts: opts.MaxAttempts,
	}
}

// RequestSync fetches the content once, then formats and enqueues a job per
// accepted platform. Rejected platforms get a reason and no job. The caller
// receives the full per-platform breakdown immediately; delivery itself
// happens on the scheduler's processing passes.
func (d *Dispatcher) RequestSync(ctx context.Context, req SyncRequest) ([]SyncResult, error) {
	if req.Action == "" {
		req.Action = models.ActionPublish
	}
	if len(req.Platforms) == 0 {
		req.Platforms = d.registry.Names()
		sort.Strings(req.Platforms)
	}

	c, err := d.source.Get(ctx, req.ContentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load content %s: %w", req.ContentID, err)
	}

	results := make([]SyncResult, 0, len(req.Platforms))
	for _, name := range req.Platforms {
		results = append(results, d.enqueueFor(c, name, req))
	}
	return results, nil
}

func (d *Dispatcher) enqueueFor(c *content.Content, platformName string, req SyncRequest) SyncResult {
	result := SyncResult{Platform: platformName}

	if !platform.Known(platformName) {
		result.Reason = ReasonUnknownPlatform
		return result
	}

	credentials, err := d.configs.Active(platformName)
	if err != nil {
		result.Reason = err.Error()
		return result
	}
	if credentials == nil || !platform.Complete(platformName, credentials) {
		result.Reason = ReasonNotConfigured
		return result
	}

	payload, err := d.formatter.Format(c, platformName)
	if err != nil {
		d.logger.Warn("Content rejected by formatter",
			zap.String("content_id", req.ContentID),
			zap.String("platform", platformName),
			zap.Error(err))
		result.Reason = ReasonInvalidContent
		return result
	}
	payload.ContentID = req.ContentID

	if err := d.snapshotVersion(req.ContentID, platformName, payload); err != nil {
		d.logger.Warn("Failed to snapshot content version", zap.Error(err))
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	job := &models.SyncJob{
		ContentID:   req.ContentID,
		Platform:    platformName,
		Action:      req.Action,
		Priority:    platform.Priority(platformName),
		Payload:     string(encoded),
		MaxAttempts: d.maxAttempts,
		ScheduledAt: req.ScheduledAt,
	}
	if err := d.queue.Enqueue(job); err != nil {
		result.Reason = err.Error()
		return result
	}

	if _, err := d.logs.RecordQueued(req.ContentID, platformName, job.ID, job.ScheduledAt); err != nil {
		d.logger.Error("Failed to record queued log entry", zap.Error(err))
	}

	d.logger.Info("Job queued",
		zap.String("content_id", req.ContentID),
		zap.String("platform", platformName),
		zap.String("action", req.Action),
		zap.Uint("job_id", job.ID))

	result.Queued = true
	result.JobID = job.ID
	result.JobUUID = job.UUID
	return result
}

func (d *Dispatcher) snapshotVersion(contentID, platformName string, payload *formatter.FormattedContent) error {
	var latest int
	err := d.db.Model(&models.ContentVersion{}).
		Where("content_id = ? AND platform = ?", contentID, platformName).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&latest).Error
	if err != nil {
		return err
	}

	images := make([]string, 0, len(payload.Images))
	for _, img := range payload.Images {
		images = append(images, img.URL)
	}

	return d.db.Create(&models.ContentVersion{
		ContentID:     contentID,
		Platform:      platformName,
		VersionNumber: latest + 1,
		Title:         payload.Title,
		Content:       payload.Body,
		Excerpt:       payload.Excerpt,
		Images:        strings.Join(images, ","),
		Hashtags:      strings.Join(payload.Hashtags, ","),
	}).Error
}

// ProcessDue claims a batch of due jobs and delivers them on a bounded
// worker pool. It returns once every claimed job has reached a transition.
func (d *Dispatcher) ProcessDue(ctx context.Context, batchSize int) (int, error) {
	jobs, err := d.queue.ClaimDue(batchSize)
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, d.workers)
	for i := range jobs {
		job := jobs[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			d.processJob(ctx, &job)
		}()
	}
	wg.Wait()

	return len(jobs), nil
}

// processJob runs one delivery attempt and records the outcome on both the
// job row and its log entry.
func (d *Dispatcher) processJob(ctx context.Context, job *models.SyncJob) {
	log := d.logger.With(
		zap.Uint("job_id", job.ID),
		zap.String("content_id", job.ContentID),
		zap.String("platform", job.Platform),
		zap.Int("attempt", job.Attempts))

	var payload formatter.FormattedContent
	if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
		log.Error("Corrupt job payload", zap.Error(err))
		d.finishFailed(job, fmt.Errorf("corrupt payload: %w", err))
		return
	}

	credentials, err := d.configs.Active(job.Platform)
	if err == nil && (credentials == nil || !platform.Complete(job.Platform, credentials)) {
		err = platform.ErrNotConfigured
	}
	if err != nil {
		log.Warn("Platform unavailable", zap.Error(err))
		d.finish(job, nil, err, log)
		return
	}

	adapter, err := d.registry.Create(job.Platform, credentials)
	if err != nil {
		log.Error("No adapter for platform", zap.Error(err))
		d.finish(job, nil, err, log)
		return
	}

	result, err := platform.Execute(ctx, adapter, job.Action, &payload)
	d.finish(job, result, err, log)
}

func (d *Dispatcher) finish(job *models.SyncJob, result *platform.DeliveryResult, err error, log *zap.Logger) {
	if err == nil {
		if markErr := d.queue.MarkCompleted(job.ID); markErr != nil {
			log.Error("Failed to complete job", zap.Error(markErr))
		}
		outcome := Outcome{
			Status:   models.LogStatusSuccess,
			Attempts: job.Attempts,
		}
		if result != nil {
			outcome.ExternalID = result.ExternalID
			outcome.ExternalURL = result.ExternalURL
			outcome.ResponseData = string(result.RawResponse)
		}
		if logErr := d.logs.RecordOutcome(job.ID, outcome); logErr != nil {
			log.Error("Failed to record outcome", zap.Error(logErr))
		}
		log.Info("Delivery succeeded")
		return
	}

	if platform.Retryable(err) && job.Attempts < job.MaxAttempts {
		if markErr := d.queue.MarkRetry(job.ID); markErr != nil {
			log.Error("Failed to requeue job", zap.Error(markErr))
		}
		if logErr := d.logs.RecordOutcome(job.ID, Outcome{
			Status:       models.LogStatusRetrying,
			ErrorMessage: err.Error(),
			Attempts:     job.Attempts,
		}); logErr != nil {
			log.Error("Failed to record outcome", zap.Error(logErr))
		}
		log.Warn("Delivery failed, will retry", zap.Error(err))
		return
	}

	d.finishFailed(job, err)
	log.Error("Delivery failed terminally", zap.Error(err))
}

func (d *Dispatcher) finishFailed(job *models.SyncJob, err error) {
	if markErr := d.queue.MarkFailed(job.ID); markErr != nil {
		d.logger.Error("Failed to fail job", zap.Uint("job_id", job.ID), zap.Error(markErr))
	}
	if logErr := d.logs.RecordOutcome(job.ID, Outcome{
		Status:       models.LogStatusFailed,
		ErrorMessage: err.Error(),
		Attempts:     job.Attempts,
	}); logErr != nil {
		d.logger.Error("Failed to record outcome", zap.Uint("job_id", job.ID), zap.Error(logErr))
	}
}

// RequestRetry re-queues a failed delivery from its log entry. The prior
// job's frozen payload is reused when it still exists; otherwise the content
// is fetched and formatted again.
func (d *Dispatcher) RequestRetry(ctx context.Context, logID uint) (*SyncResult, error) {
	entry, err := d.logs.Get(logID)
	if err != nil {
		return nil, err
	}

	var payload string
	var action = models.ActionPublish
	if entry.JobID != nil {
		if prior, err := d.queue.Get(*entry.JobID); err == nil {
			payload = prior.Payload
			action = prior.Action
		}
	}
	if payload == "" {
		c, err := d.source.Get(ctx, entry.ContentID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload content %s: %w", entry.ContentID, err)
		}
		formatted, err := d.formatter.Format(c, entry.Platform)
		if err != nil {
			return nil, err
		}
		formatted.ContentID = entry.ContentID
		encoded, err := json.Marshal(formatted)
		if err != nil {
			return nil, err
		}
		payload = string(encoded)
	}

	job := &models.SyncJob{
		ContentID:   entry.ContentID,
		Platform:    entry.Platform,
		Action:      action,
		Priority:    platform.Priority(entry.Platform),
		Payload:     payload,
		MaxAttempts: d.maxAttempts,
	}
	if err := d.queue.Enqueue(job); err != nil {
		return nil, err
	}

	if err := d.logs.MarkRetrying(entry.ID, job.ID); err != nil {
		d.logger.Error("Failed to re-arm log entry", zap.Error(err))
	}

	d.logger.Info("Manual retry queued",
		zap.Uint("log_id", entry.ID),
		zap.Uint("job_id", job.ID),
		zap.String("platform", entry.Platform))

	return &SyncResult{
		Platform: entry.Platform,
		Queued:   true,
		JobID:    job.ID,
		JobUUID:  job.UUID,
	}, nil
}

// TestPlatform builds an adapter from the active config and probes the
// platform API.
func (d *Dispatcher) TestPlatform(ctx context.Context, platformName string) error {
	if !platform.Known(platformName) {
		return fmt.Errorf("%w: %s", platform.ErrUnknownPlatform, platformName)
	}
	credentials, err := d.configs.Active(platformName)
	if err != nil {
		return err
	}
	if credentials == nil {
		return platform.ErrNotConfigured
	}
	adapter, err := d.registry.Create(platformName, credentials)
	if err != nil {
		return err
	}
	return adapter.TestConnection(ctx)
}

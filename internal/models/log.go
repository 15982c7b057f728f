package models

import (
	"time"
)

// Log status values. Unlike jobs, logs also carry the transient
// queued/retrying states so the history endpoint reflects mid-retry state.
const (
	LogStatusPending    = "pending"
	LogStatusQueued     = "queued"
	LogStatusProcessing = "processing"
	LogStatusRetrying   = "retrying"
	LogStatusSuccess    = "success"
	LogStatusFailed     = "failed"
)

// SyndicationLog is the consumer-facing audit record for a job's lifecycle.
// One entry is current per (content, platform) sync cycle and is updated in
// place across retries; re-syncs create fresh entries so history accumulates.
type SyndicationLog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ContentID    string     `gorm:"size:255;not null;index:idx_log_content_platform" json:"content_id"`
	Platform     string     `gorm:"size:50;not null;index:idx_log_content_platform" json:"platform"`
	JobID        *uint      `gorm:"index" json:"job_id"`
	Status       string     `gorm:"size:20;default:'pending';index" json:"status"`
	ExternalID   string     `gorm:"size:255" json:"external_id"`
	ExternalURL  string     `gorm:"type:text" json:"external_url"`
	ResponseData string     `gorm:"type:text" json:"response_data"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`
	Attempts     int        `gorm:"default:0" json:"attempts"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	SyncedAt     *time.Time `json:"synced_at"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

package models

import (
	"time"
)

// Job status values. A job only ever moves forward except for the
// processing -> pending retry transition.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Sync actions supported by platform adapters.
const (
	ActionPublish = "publish"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
)

// SyncJob is one unit of work: deliver one content item to one platform.
// The payload is the formatted content frozen at enqueue time, so later
// edits to the source content never change a queued job.
type SyncJob struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UUID        string     `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	ContentID   string     `gorm:"size:255;not null;index:idx_content_platform" json:"content_id"`
	Platform    string     `gorm:"size:50;not null;index:idx_content_platform" json:"platform"`
	Action      string     `gorm:"size:50;not null;default:'publish'" json:"action"`
	Priority    int        `gorm:"default:5;index:idx_status_priority" json:"priority"`
	Payload     string     `gorm:"type:text" json:"payload"`
	Status      string     `gorm:"size:20;default:'pending';index:idx_status_priority" json:"status"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	MaxAttempts int        `gorm:"default:3" json:"max_attempts"`
	ScheduledAt *time.Time `gorm:"index" json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Terminal reports whether the job can still transition.
func (j *SyncJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

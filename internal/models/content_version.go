package models

import (
	"time"
)

// ContentVersion snapshots the formatted payload produced at enqueue time,
// one version per (content, platform) sync, kept for reproducibility.
type ContentVersion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ContentID     string    `gorm:"size:255;not null;index:idx_version_content_platform" json:"content_id"`
	Platform      string    `gorm:"size:50;not null;index:idx_version_content_platform" json:"platform"`
	VersionNumber int       `gorm:"default:1" json:"version_number"`
	Title         string    `gorm:"type:text" json:"title"`
	Content       string    `gorm:"type:text" json:"content"`
	Excerpt       string    `gorm:"type:text" json:"excerpt"`
	Images        string    `gorm:"type:text" json:"images"`
	Hashtags      string    `gorm:"type:text" json:"hashtags"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

package models

import (
	"time"
)

// AnalyticsSample is one engagement metric reading for a delivered item,
// upserted per (content, platform, metric, day).
type AnalyticsSample struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ContentID    string    `gorm:"size:255;not null;uniqueIndex:idx_metric_sample" json:"content_id"`
	Platform     string    `gorm:"size:50;not null;uniqueIndex:idx_metric_sample" json:"platform"`
	MetricType   string    `gorm:"size:50;not null;uniqueIndex:idx_metric_sample" json:"metric_type"`
	MetricValue  int64     `gorm:"default:0" json:"metric_value"`
	DateRecorded time.Time `gorm:"type:date;not null;uniqueIndex:idx_metric_sample" json:"date_recorded"`
	RawData      string    `gorm:"type:text" json:"raw_data"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

package models

import (
	"time"
)

// PlatformConfig stores per-platform credentials and limits as a JSON blob.
// Multiple named configs per platform are supported; adapters read the
// active "default" config unless told otherwise.
type PlatformConfig struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Platform   string    `gorm:"size:50;not null;uniqueIndex:idx_platform_config" json:"platform"`
	ConfigName string    `gorm:"size:100;not null;default:'default';uniqueIndex:idx_platform_config" json:"config_name"`
	ConfigData string    `gorm:"type:text;not null" json:"config_data"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

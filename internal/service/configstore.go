package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hubcast/hubcast/internal/models"
	"github.com/hubcast/hubcast/internal/platform"
)

// PlatformConfigService stores per-platform credential sets. Credentials
// are validated against the platform's required field list before they are
// persisted, so a row in the table always decodes to a usable config.
type PlatformConfigService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPlatformConfigService(db *gorm.DB, logger *zap.Logger) *PlatformConfigService {
	return &PlatformConfigService{db: db, logger: logger}
}

// Save validates and upserts a credential set keyed by platform and config
// name. Saving the same key twice overwrites the previous values.
func (s *PlatformConfigService) Save(platformName, configName string, credentials map[string]string) error {
	if !platform.Known(platformName) {
		return fmt.Errorf("%w: %s", platform.ErrUnknownPlatform, platformName)
	}
	if configName == "" {
		configName = "default"
	}
	if err := platform.ValidateCredentials(platformName, credentials); err != nil {
		return err
	}

	data, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	var existing models.PlatformConfig
	err = s.db.
		Where("platform = ? AND config_name = ?", platformName, configName).
		First(&existing).Error
	switch {
	case err == nil:
		res := s.db.Model(&existing).Updates(map[string]any{
			"config_data": string(data),
			"is_active":   true,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update platform config: %w", res.Error)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := &models.PlatformConfig{
			Platform:   platformName,
			ConfigName: configName,
			ConfigData: string(data),
			IsActive:   true,
		}
		if err := s.db.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to save platform config: %w", err)
		}
	default:
		return fmt.Errorf("failed to load platform config: %w", err)
	}

	s.logger.Info("Platform config saved",
		zap.String("platform", platformName),
		zap.String("config", configName))
	return nil
}

// Active returns the decoded credential set for a platform, or nil when the
// platform has no active config. Callers treat nil as not configured.
func (s *PlatformConfigService) Active(platformName string) (map[string]string, error) {
	var entry models.PlatformConfig
	err := s.db.
		Where("platform = ? AND is_active = ?", platformName, true).
		Order("updated_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load platform config: %w", err)
	}

	var credentials map[string]string
	if err := json.Unmarshal([]byte(entry.ConfigData), &credentials); err != nil {
		return nil, fmt.Errorf("corrupt config for %s: %w", platformName, err)
	}
	return credentials, nil
}

// SetActive toggles a platform's config without deleting the credentials.
func (s *PlatformConfigService) SetActive(platformName, configName string, active bool) error {
	if configName == "" {
		configName = "default"
	}
	res := s.db.Model(&models.PlatformConfig{}).
		Where("platform = ? AND config_name = ?", platformName, configName).
		Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to toggle platform config: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no config named %s for platform %s", configName, platformName)
	}
	return nil
}

// PlatformStatus is one row of the platform status listing.
type PlatformStatus struct {
	Platform   string `json:"platform"`
	Configured bool   `json:"configured"`
	Active     bool   `json:"active"`
	Priority   int    `json:"priority"`
}

// Status reports configuration state for every known platform, configured
// or not, so the listing is stable regardless of what has been saved.
func (s *PlatformConfigService) Status(platforms []string) ([]PlatformStatus, error) {
	var entries []models.PlatformConfig
	if err := s.db.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list platform configs: %w", err)
	}

	byPlatform := make(map[string]*PlatformStatus, len(platforms))
	statuses := make([]PlatformStatus, 0, len(platforms))
	for _, name := range platforms {
		statuses = append(statuses, PlatformStatus{
			Platform: name,
			Priority: platform.Priority(name),
		})
		byPlatform[name] = &statuses[len(statuses)-1]
	}

	for _, entry := range entries {
		status, ok := byPlatform[entry.Platform]
		if !ok {
			continue
		}
		var credentials map[string]string
		if json.Unmarshal([]byte(entry.ConfigData), &credentials) != nil {
			continue
		}
		if platform.Complete(entry.Platform, credentials) {
			status.Configured = true
			if entry.IsActive {
				status.Active = true
			}
		}
	}

	return statuses, nil
}

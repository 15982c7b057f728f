package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/hubcast/hubcast/pkg/logger"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Logger        logger.Config       `yaml:"logger"`
	ContentSource ContentSourceConfig `yaml:"content_source"`
	Queue         QueueConfig         `yaml:"queue"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Retention     RetentionConfig     `yaml:"retention"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type ContentSourceConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

type QueueConfig struct {
	BatchSize    int    `yaml:"batch_size"`
	Workers      int    `yaml:"workers"`
	MaxAttempts  int    `yaml:"max_attempts"`
	AbandonAfter string `yaml:"abandon_after"`
}

type SchedulerConfig struct {
	Enabled       bool   `yaml:"enabled"`
	QueueSpec     string `yaml:"queue_spec"`
	CleanupSpec   string `yaml:"cleanup_spec"`
	AnalyticsSpec string `yaml:"analytics_spec"`
}

type RetentionConfig struct {
	JobDays       int `yaml:"job_days"`
	LogDays       int `yaml:"log_days"`
	AnalyticsDays int `yaml:"analytics_days"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5350
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Queue.BatchSize == 0 {
		cfg.Queue.BatchSize = 10
	}
	if cfg.Queue.Workers == 0 {
		cfg.Queue.Workers = 4
	}
	if cfg.Queue.MaxAttempts == 0 {
		cfg.Queue.MaxAttempts = 3
	}
	if cfg.Queue.AbandonAfter == "" {
		cfg.Queue.AbandonAfter = "10m"
	}
	if cfg.Scheduler.QueueSpec == "" {
		cfg.Scheduler.QueueSpec = "* * * * *"
	}
	if cfg.Scheduler.CleanupSpec == "" {
		cfg.Scheduler.CleanupSpec = "0 3 * * *"
	}
	if cfg.Scheduler.AnalyticsSpec == "" {
		cfg.Scheduler.AnalyticsSpec = "0 * * * *"
	}
	if cfg.Retention.JobDays == 0 {
		cfg.Retention.JobDays = 90
	}
	if cfg.Retention.LogDays == 0 {
		cfg.Retention.LogDays = 90
	}
	if cfg.Retention.AnalyticsDays == 0 {
		cfg.Retention.AnalyticsDays = 365
	}

	return cfg, nil
}

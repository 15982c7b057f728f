package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hubcast/hubcast/internal/config"
	"github.com/hubcast/hubcast/internal/content"
	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
	"github.com/hubcast/hubcast/internal/platform/devcommunity"
	"github.com/hubcast/hubcast/internal/platform/longform"
	"github.com/hubcast/hubcast/internal/platform/microblog"
	"github.com/hubcast/hubcast/internal/platform/newsletter"
	"github.com/hubcast/hubcast/internal/platform/profnet"
	"github.com/hubcast/hubcast/internal/platform/socialfeed"
	"github.com/hubcast/hubcast/internal/service"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Registry   *service.PlatformConfigService
	Logs       *service.LogService
	Analytics  *service.AnalyticsService
	Dispatcher *service.Dispatcher
	Scheduler  *service.Scheduler
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Register the platform adapters
	registry := platform.NewRegistry(logger)
	factories := map[string]platform.Factory{
		formatter.PlatformMicroblog:           microblog.New,
		formatter.PlatformSocialFeed:          socialfeed.New,
		formatter.PlatformProfessionalNetwork: profnet.New,
		formatter.PlatformLongForm:            longform.New,
		formatter.PlatformDevCommunity:        devcommunity.New,
		formatter.PlatformNewsletter:          newsletter.New,
	}
	for name, factory := range factories {
		if err := registry.Register(name, factory); err != nil {
			return nil, fmt.Errorf("failed to register adapter: %w", err)
		}
	}

	// Initialize services
	queue := service.NewQueueStore(db, logger)
	logs := service.NewLogService(db, logger)
	configs := service.NewPlatformConfigService(db, logger)
	analytics := service.NewAnalyticsService(db, configs, registry, logger)
	source := content.NewHTTPSource(cfg.ContentSource.BaseURL, cfg.ContentSource.Token)

	dispatcher := service.NewDispatcher(queue, logs, configs, registry, formatter.New(), source, db, logger,
		service.DispatcherOptions{
			Workers:     cfg.Queue.Workers,
			MaxAttempts: cfg.Queue.MaxAttempts,
		})

	abandonAfter, err := time.ParseDuration(cfg.Queue.AbandonAfter)
	if err != nil {
		return nil, fmt.Errorf("invalid abandon_after: %w", err)
	}
	scheduler := service.NewScheduler(dispatcher, queue, logs, analytics, logger, service.SchedulerOptions{
		QueueSpec:          cfg.Scheduler.QueueSpec,
		CleanupSpec:        cfg.Scheduler.CleanupSpec,
		AnalyticsSpec:      cfg.Scheduler.AnalyticsSpec,
		BatchSize:          cfg.Queue.BatchSize,
		AbandonAfter:       abandonAfter,
		JobRetention:       time.Duration(cfg.Retention.JobDays) * 24 * time.Hour,
		LogRetention:       time.Duration(cfg.Retention.LogDays) * 24 * time.Hour,
		AnalyticsRetention: time.Duration(cfg.Retention.AnalyticsDays) * 24 * time.Hour,
	})

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:     cfg,
		DB:         db,
		Router:     router,
		Logger:     logger,
		Registry:   configs,
		Logs:       logs,
		Analytics:  analytics,
		Dispatcher: dispatcher,
		Scheduler:  scheduler,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		api.POST("/sync", s.handleSync)
		api.POST("/retry", s.handleRetry)
		api.GET("/logs", s.handleListLogs)
		api.GET("/stats", s.handleStats)

		contentGroup := api.Group("/content")
		{
			contentGroup.GET("/:id/history", s.handleHistory)
			contentGroup.GET("/:id/metrics", s.handleMetrics)
		}

		platforms := api.Group("/platforms")
		{
			platforms.GET("/status", s.handlePlatformStatus)
			platforms.POST("/:platform/config", s.handleSaveConfig)
			platforms.POST("/:platform/test", s.handleTestPlatform)
		}
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler
	if s.Config.Scheduler.Enabled {
		if err := s.Scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop scheduler first
	if s.Config.Scheduler.Enabled {
		s.Scheduler.Stop()
	}

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}

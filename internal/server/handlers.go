package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hubcast/hubcast/internal/formatter"
	"github.com/hubcast/hubcast/internal/platform"
	"github.com/hubcast/hubcast/internal/service"
)

func (s *Server) handleSync(c *gin.Context) {
	var req service.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := s.Dispatcher.RequestSync(c.Request.Context(), req)
	if err != nil {
		s.Logger.Error("Sync request failed", zap.String("content_id", req.ContentID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load content"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"results": results})
}

func (s *Server) handleRetry(c *gin.Context) {
	var req struct {
		LogID uint `json:"log_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.Dispatcher.RequestRetry(c.Request.Context(), req.LogID)
	if err != nil {
		if errors.Is(err, service.ErrLogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Log entry not found"})
			return
		}
		s.Logger.Error("Retry request failed", zap.Uint("log_id", req.LogID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue retry"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"result": result})
}

func (s *Server) handleHistory(c *gin.Context) {
	entries, err := s.Logs.History(c.Param("id"))
	if err != nil {
		s.Logger.Error("Failed to load history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (s *Server) handleMetrics(c *gin.Context) {
	samples, err := s.Analytics.Metrics(c.Param("id"))
	if err != nil {
		s.Logger.Error("Failed to load metrics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": samples})
}

func (s *Server) handleListLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := s.Logs.List(c.Query("content_id"), c.Query("platform"), c.Query("status"), limit)
	if err != nil {
		s.Logger.Error("Failed to list logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": entries})
}

func (s *Server) handleStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	overall, err := s.Logs.AggregateStats(c.Query("platform"), days)
	if err != nil {
		s.Logger.Error("Failed to aggregate stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
		return
	}

	byPlatform, err := s.Logs.PlatformStats(days)
	if err != nil {
		s.Logger.Error("Failed to aggregate platform stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"overall":   overall,
		"platforms": byPlatform,
	})
}

func (s *Server) handlePlatformStatus(c *gin.Context) {
	statuses, err := s.Registry.Status([]string{
		formatter.PlatformMicroblog,
		formatter.PlatformSocialFeed,
		formatter.PlatformProfessionalNetwork,
		formatter.PlatformLongForm,
		formatter.PlatformDevCommunity,
		formatter.PlatformNewsletter,
	})
	if err != nil {
		s.Logger.Error("Failed to load platform status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load platform status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"platforms": statuses})
}

func (s *Server) handleSaveConfig(c *gin.Context) {
	var req struct {
		ConfigName  string            `json:"config_name"`
		Credentials map[string]string `json:"credentials" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.Registry.Save(c.Param("platform"), req.ConfigName, req.Credentials)
	if err != nil {
		if errors.Is(err, platform.ErrUnknownPlatform) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Configuration saved"})
}

func (s *Server) handleTestPlatform(c *gin.Context) {
	err := s.Dispatcher.TestPlatform(c.Request.Context(), c.Param("platform"))
	if err != nil {
		switch {
		case errors.Is(err, platform.ErrUnknownPlatform):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, platform.ErrNotConfigured):
			c.JSON(http.StatusConflict, gin.H{"error": "Platform is not configured"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Connection ok"})
}

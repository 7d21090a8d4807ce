package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/killallgit/digest-api/api/channels"
	"github.com/killallgit/digest-api/api/digests"
	"github.com/killallgit/digest-api/api/health"
	"github.com/killallgit/digest-api/api/jobs"
	"github.com/killallgit/digest-api/api/types"
	"github.com/killallgit/digest-api/api/version"
	"github.com/killallgit/digest-api/api/videos"
	channelsService "github.com/killallgit/digest-api/internal/services/channels"
	digestsService "github.com/killallgit/digest-api/internal/services/digests"
	jobsService "github.com/killallgit/digest-api/internal/services/jobs"
	videosService "github.com/killallgit/digest-api/internal/services/videos"
	"github.com/killallgit/digest-api/pkg/config"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	// API v1 routes
	v1 := engine.Group("/api/v1")

	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if deps == nil {
		deps = &types.Dependencies{}
	}

	// Initialize services if database is available
	if deps.DB != nil && deps.DB.DB != nil {
		initializeServices(deps, cfg)

		// Channel management with strict rate limiting (5 req/s, burst of 10)
		channelGroup := v1.Group("/channels")
		channelGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 5, 10))
		channels.RegisterRoutes(channelGroup, deps)

		// Video pipeline with general rate limiting (10 req/s, burst of 20)
		videoGroup := v1.Group("/videos")
		videoGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
		videos.RegisterRoutes(videoGroup, deps)

		// Digest history with general rate limiting (10 req/s, burst of 20)
		digestGroup := v1.Group("/digests")
		digestGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
		digests.RegisterRoutes(digestGroup, deps)

		// Job queue inspection with general rate limiting (10 req/s, burst of 20)
		jobGroup := v1.Group("/jobs")
		jobGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, 10, 20))
		jobs.RegisterRoutes(jobGroup, deps)
	}

	return nil
}

// initializeServices fills in any handler dependency not wired by the caller
func initializeServices(deps *types.Dependencies, cfg *config.Config) {
	if deps.ChannelService == nil {
		deps.ChannelService = channelsService.NewService(channelsService.NewRepository(deps.DB.DB))
	}

	if deps.VideoService == nil {
		deps.VideoService = videosService.NewService(videosService.NewRepository(deps.DB.DB), videosService.EligibilityRules{
			MinDuration: cfg.Processing.MinVideoDuration,
			MaxRetries:  cfg.Processing.MaxRetries,
			RetryDelay:  cfg.Processing.RetryDelay,
		})
	}

	if deps.DigestService == nil {
		deps.DigestService = digestsService.NewService(
			digestsService.NewRepository(deps.DB.DB),
			digestsService.Triggers{
				Interval:       time.Duration(cfg.Digest.IntervalDays) * 24 * time.Hour,
				VideoThreshold: cfg.Digest.VideoThreshold,
				MaxVideos:      cfg.Digest.MaxVideos,
			},
			cfg.Mail.ToAddress,
		)
	}

	if deps.JobService == nil {
		deps.JobService = jobsService.NewService(jobsService.NewRepository(deps.DB.DB))
	}
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}

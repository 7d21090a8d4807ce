package workers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/videos"
)

// SchedulerConfig holds the periodic intervals
type SchedulerConfig struct {
	// ChannelCheckInterval spaces the channel feed sweeps
	ChannelCheckInterval time.Duration
	// DigestCheckInterval spaces the digest trigger evaluations
	DigestCheckInterval time.Duration
	// RetrySweepInterval spaces the failed-video re-enqueue sweeps
	RetrySweepInterval time.Duration
	// JobRetentionDays bounds how long finished jobs are kept
	JobRetentionDays int
}

// Scheduler enqueues the recurring jobs that drive the pipeline: feed
// checks, digest trigger evaluation, failed-video retries, and queue
// cleanup.
type Scheduler struct {
	jobService   jobs.Service
	videoService videos.VideoService
	cfg          SchedulerConfig
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// NewScheduler creates a scheduler
func NewScheduler(jobService jobs.Service, videoService videos.VideoService, cfg SchedulerConfig) *Scheduler {
	if cfg.ChannelCheckInterval <= 0 {
		cfg.ChannelCheckInterval = time.Hour
	}
	if cfg.DigestCheckInterval <= 0 {
		cfg.DigestCheckInterval = time.Hour
	}
	if cfg.RetrySweepInterval <= 0 {
		cfg.RetrySweepInterval = 15 * time.Minute
	}
	if cfg.JobRetentionDays <= 0 {
		cfg.JobRetentionDays = 30
	}
	return &Scheduler{
		jobService:   jobService,
		videoService: videoService,
		cfg:          cfg,
		stopChan:     make(chan struct{}),
	}
}

// Start runs the scheduler loops in goroutines
func (s *Scheduler) Start(ctx context.Context) {
	s.loop(ctx, s.cfg.ChannelCheckInterval, s.enqueueChannelCheck)
	s.loop(ctx, s.cfg.DigestCheckInterval, s.enqueueDigestCheck)
	s.loop(ctx, s.cfg.RetrySweepInterval, s.sweepFailedVideos)
	s.loop(ctx, 24*time.Hour, s.cleanupJobs)
	log.Printf("Scheduler started (channel check %v, digest check %v)",
		s.cfg.ChannelCheckInterval, s.cfg.DigestCheckInterval)
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, task func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// One immediate pass so a restart does not wait a full interval
		task(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				task(ctx)
			}
		}
	}()
}

func (s *Scheduler) enqueueChannelCheck(ctx context.Context) {
	payload := models.JobPayload{"scope": "all"}
	if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeChannelCheck, payload, "scope",
		jobs.WithCreatedBy("scheduler")); err != nil {
		log.Printf("[ERROR] Enqueueing channel check: %v", err)
	}
}

func (s *Scheduler) enqueueDigestCheck(ctx context.Context) {
	payload := models.JobPayload{"reason": "scheduled"}
	if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeDigestGeneration, payload, "reason",
		jobs.WithCreatedBy("scheduler")); err != nil {
		log.Printf("[ERROR] Enqueueing digest check: %v", err)
	}
}

// sweepFailedVideos re-queues videos with failed attempts whose retry
// delay elapsed
func (s *Scheduler) sweepFailedVideos(ctx context.Context) {
	eligible, err := s.videoService.RetryableVideos(ctx, 50)
	if err != nil {
		log.Printf("[ERROR] Listing retryable videos: %v", err)
		return
	}

	for _, video := range eligible {
		if _, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeVideoProcess,
			models.JobPayload{"video_id": video.VideoID}, "video_id",
			jobs.WithCreatedBy("retry-sweep")); err != nil {
			log.Printf("[ERROR] Re-enqueueing video %s: %v", video.VideoID, err)
		}
	}
	if len(eligible) > 0 {
		log.Printf("[INFO] Retry sweep queued %d failed videos", len(eligible))
	}
}

func (s *Scheduler) cleanupJobs(ctx context.Context) {
	if _, err := s.jobService.CleanupOldJobs(ctx, s.cfg.JobRetentionDays); err != nil {
		log.Printf("[ERROR] Cleaning up old jobs: %v", err)
	}
}

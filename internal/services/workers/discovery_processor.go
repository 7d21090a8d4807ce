package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/channels"
	"github.com/killallgit/digest-api/internal/services/discovery"
	"github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/videos"
)

// DiscoveryProcessor handles channel checking and syncing. A check job
// fans out into one sync job per channel that is due; a sync job pulls
// the channel's new uploads and queues them for processing.
type DiscoveryProcessor struct {
	jobService     jobs.Service
	channelService channels.ChannelService
	videoService   videos.VideoService
	source         discovery.Source
	checkInterval  time.Duration
	checkWindow    time.Duration
}

// NewDiscoveryProcessor creates a new discovery processor
func NewDiscoveryProcessor(
	jobService jobs.Service,
	channelService channels.ChannelService,
	videoService videos.VideoService,
	source discovery.Source,
	checkInterval time.Duration,
	checkWindow time.Duration,
) *DiscoveryProcessor {
	if checkInterval <= 0 {
		checkInterval = time.Hour
	}
	if checkWindow <= 0 {
		checkWindow = 7 * 24 * time.Hour
	}
	return &DiscoveryProcessor{
		jobService:     jobService,
		channelService: channelService,
		videoService:   videoService,
		source:         source,
		checkInterval:  checkInterval,
		checkWindow:    checkWindow,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *DiscoveryProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeChannelCheck || jobType == models.JobTypeChannelSync
}

// ProcessJob processes a channel check or sync job
func (p *DiscoveryProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	switch job.Type {
	case models.JobTypeChannelCheck:
		return p.processCheck(ctx, job)
	case models.JobTypeChannelSync:
		return p.processSync(ctx, job)
	default:
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}
}

// processCheck enqueues a sync job for every channel due for a check
func (p *DiscoveryProcessor) processCheck(ctx context.Context, job *models.Job) error {
	due, err := p.channelService.DueForCheck(ctx, p.checkInterval)
	if err != nil {
		return models.NewSystemError("channel_list", "listing channels due for check", err.Error(), err)
	}

	enqueued := 0
	for _, channel := range due {
		_, err := p.jobService.EnqueueUniqueJob(ctx, models.JobTypeChannelSync,
			models.JobPayload{"channel_id": channel.ChannelID}, "channel_id")
		if err != nil {
			log.Printf("[ERROR] Enqueueing sync for channel %s: %v", channel.ChannelID, err)
			continue
		}
		enqueued++
	}

	log.Printf("[INFO] Channel check: %d of %d due channels queued for sync", enqueued, len(due))
	job.SetResult("channels_queued", enqueued)
	return p.jobService.CompleteJob(ctx, job.ID, job.Result)
}

// processSync pulls one channel's new uploads and registers them
func (p *DiscoveryProcessor) processSync(ctx context.Context, job *models.Job) error {
	channelID, ok := job.GetPayloadString("channel_id")
	if !ok {
		return models.NewPermanentError("invalid_payload", "job payload has no channel_id", "", nil)
	}

	channel, err := p.channelService.Get(ctx, channelID)
	if err != nil {
		return models.NewPermanentError("channel_missing", fmt.Sprintf("channel %s not subscribed", channelID), "", err)
	}

	if channel.Title == "" || channel.ThumbnailURL == "" {
		meta, err := p.source.LookupChannel(ctx, channelID)
		if err != nil {
			log.Printf("[WARN] Looking up channel %s metadata: %v", channelID, err)
		} else {
			if channel.Title == "" {
				channel.Title = meta.Title
			}
			if channel.ThumbnailURL == "" {
				channel.ThumbnailURL = meta.ThumbnailURL
			}
		}
	}

	since := time.Now().UTC().Add(-p.checkWindow)
	if channel.LastCheckedAt != nil && channel.LastCheckedAt.After(since) {
		since = *channel.LastCheckedAt
	}

	found, err := p.source.ListChannelVideos(ctx, channelID, since)
	if err != nil {
		return models.NewTransientError("feed_fetch", fmt.Sprintf("listing videos for channel %s", channelID), "", err)
	}

	registered := 0
	for _, meta := range found {
		if meta.IsLive {
			log.Printf("[DEBUG] Skipping live video %s", meta.VideoID)
			continue
		}

		video := &models.Video{
			VideoID:         meta.VideoID,
			ChannelID:       meta.ChannelID,
			Title:           meta.Title,
			Description:     meta.Description,
			DurationSeconds: meta.DurationSeconds,
			PublishedAt:     meta.PublishedAt,
			ThumbnailURL:    meta.ThumbnailURL,
		}
		stored, err := p.videoService.Register(ctx, video)
		if err != nil {
			log.Printf("[ERROR] Registering video %s: %v", meta.VideoID, err)
			continue
		}
		if !stored {
			continue
		}
		registered++

		if _, err := p.jobService.EnqueueUniqueJob(ctx, models.JobTypeVideoProcess,
			models.JobPayload{"video_id": meta.VideoID}, "video_id"); err != nil {
			log.Printf("[ERROR] Enqueueing processing for video %s: %v", meta.VideoID, err)
		}
	}

	if err := p.channelService.MarkChecked(ctx, channel); err != nil {
		return models.NewSystemError("channel_update", "marking channel checked", err.Error(), err)
	}

	log.Printf("[INFO] Synced channel %s: %d new videos of %d found", channelID, registered, len(found))
	job.SetResult("videos_found", len(found))
	job.SetResult("videos_registered", registered)
	return p.jobService.CompleteJob(ctx, job.ID, job.Result)
}

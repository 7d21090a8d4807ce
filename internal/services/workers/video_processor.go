package workers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/channels"
	"github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/summaries"
	"github.com/killallgit/digest-api/internal/services/transcripts"
	"github.com/killallgit/digest-api/internal/services/videos"
)

// VideoProcessor runs a discovered video through transcript acquisition
// and summarization
type VideoProcessor struct {
	jobService        jobs.Service
	videoService      videos.VideoService
	channelService    channels.ChannelService
	transcriptService transcripts.Service
	summaryService    summaries.Service
}

// NewVideoProcessor creates a new video processor
func NewVideoProcessor(
	jobService jobs.Service,
	videoService videos.VideoService,
	channelService channels.ChannelService,
	transcriptService transcripts.Service,
	summaryService summaries.Service,
) *VideoProcessor {
	return &VideoProcessor{
		jobService:        jobService,
		videoService:      videoService,
		channelService:    channelService,
		transcriptService: transcriptService,
		summaryService:    summaryService,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *VideoProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeVideoProcess
}

// ProcessJob processes a video processing job
func (p *VideoProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	videoID, ok := job.GetPayloadString("video_id")
	if !ok {
		return models.NewPermanentError("invalid_payload", "job payload has no video_id", "", nil)
	}

	video, err := p.videoService.Get(ctx, videoID)
	if err != nil {
		if videos.IsNotFound(err) {
			return models.NewPermanentError("video_missing", fmt.Sprintf("video %s no longer exists", videoID), "", err)
		}
		return models.NewSystemError("video_lookup", "loading video", err.Error(), err)
	}

	// Terminal here means the retry budget is spent or the failure was
	// permanent; only a manual reset revives such a video.
	if video.Status == models.VideoStatusSummarized || video.Status.IsTerminal() {
		log.Printf("[DEBUG] Video %s already processed (status %s), nothing to do", videoID, video.Status)
		job.SetResult("skipped", true)
		return p.jobService.CompleteJob(ctx, job.ID, job.Result)
	}

	if err := p.ensureTranscript(ctx, video); err != nil {
		return err
	}
	if err := p.summarize(ctx, video); err != nil {
		return err
	}

	job.SetResult("video_id", videoID)
	job.SetResult("category", string(video.Category))
	return p.jobService.CompleteJob(ctx, job.ID, job.Result)
}

// ensureTranscript resolves a transcript unless the video already
// carries one from an earlier attempt
func (p *VideoProcessor) ensureTranscript(ctx context.Context, video *models.Video) error {
	if video.Status == models.VideoStatusTranscriptFetched && video.Transcript != "" {
		return nil
	}

	transcript, err := p.transcriptService.Resolve(ctx, video.VideoID)
	if err != nil {
		if recordErr := p.videoService.RecordFailure(ctx, video, models.VideoStatusTranscriptFailed, err); recordErr != nil {
			return models.NewSystemError("video_update", "recording transcript failure", recordErr.Error(), recordErr)
		}
		if errors.Is(err, transcripts.ErrNoTranscript) {
			return models.NewTransientError("no_transcript", fmt.Sprintf("no transcript for video %s", video.VideoID), "", err)
		}
		return models.NewTransientError("transcript_source", fmt.Sprintf("transcript sources failed for video %s", video.VideoID), "", err)
	}

	if err := p.videoService.AttachTranscript(ctx, video, transcript.Text, transcript.Source, transcript.Language); err != nil {
		return models.NewSystemError("video_update", "storing transcript", err.Error(), err)
	}

	log.Printf("[INFO] Stored %s transcript for video %s (%s, %d chars)",
		transcript.Source, video.VideoID, transcript.Language, len(transcript.Text))
	return nil
}

// summarize generates and stores the structured summary. A manual
// channel category overrides whatever the model picked.
func (p *VideoProcessor) summarize(ctx context.Context, video *models.Video) error {
	summary, err := p.summaryService.Summarize(ctx, video.Title, video.Transcript)
	if err != nil {
		var sumErr *summaries.SummarizationError
		if errors.As(err, &sumErr) && !sumErr.Retryable {
			if recordErr := p.videoService.FailPermanently(ctx, video, models.VideoStatusSummaryFailed, err); recordErr != nil {
				return models.NewSystemError("video_update", "recording summary failure", recordErr.Error(), recordErr)
			}
			return models.NewSchemaError("summary_rejected", fmt.Sprintf("summarization permanently failed for video %s", video.VideoID), err.Error(), err)
		}

		if recordErr := p.videoService.RecordFailure(ctx, video, models.VideoStatusSummaryFailed, err); recordErr != nil {
			return models.NewSystemError("video_update", "recording summary failure", recordErr.Error(), recordErr)
		}
		return models.NewTransientError("summary_failed", fmt.Sprintf("summarization failed for video %s", video.VideoID), "", err)
	}

	if override := p.manualCategory(ctx, video.ChannelID); override != nil {
		summary.Category = *override
	}

	if err := p.videoService.AttachSummary(ctx, video, summary); err != nil {
		return models.NewSystemError("video_update", "storing summary", err.Error(), err)
	}

	log.Printf("[INFO] Summarized video %s as %s", video.VideoID, summary.Category)
	return nil
}

func (p *VideoProcessor) manualCategory(ctx context.Context, channelID string) *models.Category {
	channel, err := p.channelService.Get(ctx, channelID)
	if err != nil {
		return nil
	}
	return channel.ManualCategory
}

package videos

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/digest-api/internal/models"
)

type service struct {
	repo  VideoRepository
	rules EligibilityRules
}

// Ensure service implements VideoService interface
var _ VideoService = (*service)(nil)

// NewService creates a video lifecycle service
func NewService(repo VideoRepository, rules EligibilityRules) VideoService {
	if rules.MinDuration <= 0 {
		rules.MinDuration = 60 * time.Second
	}
	if rules.MaxRetries <= 0 {
		rules.MaxRetries = 3
	}
	if rules.RetryDelay <= 0 {
		rules.RetryDelay = 15 * time.Minute
	}
	return &service{repo: repo, rules: rules}
}

// Register persists a discovered video. Shorts under the minimum
// duration are skipped, as are videos already known. Returns true when
// the video was stored.
func (s *service) Register(ctx context.Context, video *models.Video) (bool, error) {
	if time.Duration(video.DurationSeconds)*time.Second < s.rules.MinDuration {
		log.Printf("[DEBUG] Skipping short video %s (%ds)", video.VideoID, video.DurationSeconds)
		return false, nil
	}

	if _, err := s.repo.GetVideoByVideoID(ctx, video.VideoID); err == nil {
		return false, nil
	} else if !IsNotFound(err) {
		return false, err
	}

	video.Status = models.VideoStatusDiscovered
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		return false, err
	}
	log.Printf("[INFO] Registered video %s: %s", video.VideoID, video.Title)
	return true, nil
}

// Transition moves a video through the lifecycle state machine and
// persists the change. Disallowed moves fail without touching the row.
func (s *service) Transition(ctx context.Context, video *models.Video, status models.VideoStatus) error {
	if !video.Status.CanTransitionTo(status) {
		return &InvalidTransitionError{VideoID: video.VideoID, From: video.Status, To: status}
	}

	video.Status = status
	if status == models.VideoStatusSummarized || status == models.VideoStatusDigested {
		now := time.Now().UTC()
		video.ProcessedAt = &now
	}
	if status != models.VideoStatusTranscriptFailed && status != models.VideoStatusSummaryFailed {
		video.ErrorMessage = ""
	}

	return s.repo.UpdateVideo(ctx, video)
}

// RecordFailure records a failed attempt and advances the retry
// counters. While the retry budget lasts the video keeps its current
// status so the retry sweep can re-queue it after the backoff; once the
// budget is spent it enters the failed status for good.
func (s *service) RecordFailure(ctx context.Context, video *models.Video, status models.VideoStatus, cause error) error {
	now := time.Now().UTC()
	video.RetryCount++
	video.LastRetryAt = &now
	if cause != nil {
		video.ErrorMessage = cause.Error()
	}

	if video.RetryCount < s.rules.MaxRetries {
		log.Printf("[WARN] Video %s attempt %d/%d failed, will retry: %v",
			video.VideoID, video.RetryCount, s.rules.MaxRetries, cause)
		return s.repo.UpdateVideo(ctx, video)
	}

	if !video.Status.CanTransitionTo(status) {
		return &InvalidTransitionError{VideoID: video.VideoID, From: video.Status, To: status}
	}
	video.Status = status
	log.Printf("[WARN] Video %s entered %s after %d attempts: %v", video.VideoID, status, video.RetryCount, cause)
	return s.repo.UpdateVideo(ctx, video)
}

// FailPermanently moves a video straight into a failure status,
// bypassing the retry budget. Used for errors a retry cannot fix.
func (s *service) FailPermanently(ctx context.Context, video *models.Video, status models.VideoStatus, cause error) error {
	if !video.Status.CanTransitionTo(status) {
		return &InvalidTransitionError{VideoID: video.VideoID, From: video.Status, To: status}
	}

	now := time.Now().UTC()
	video.Status = status
	video.RetryCount++
	video.LastRetryAt = &now
	if cause != nil {
		video.ErrorMessage = cause.Error()
	}

	log.Printf("[WARN] Video %s entered %s permanently: %v", video.VideoID, status, cause)
	return s.repo.UpdateVideo(ctx, video)
}

// ResetForRetry returns a failed video to its pre-failure status with a
// fresh retry budget. Used by the manual re-queue path to revive videos
// whose budget is spent.
func (s *service) ResetForRetry(ctx context.Context, video *models.Video) error {
	var target models.VideoStatus
	switch video.Status {
	case models.VideoStatusTranscriptFailed:
		target = models.VideoStatusDiscovered
	case models.VideoStatusSummaryFailed:
		target = models.VideoStatusTranscriptFetched
	default:
		return fmt.Errorf("video %s is not in a failed status (%s)", video.VideoID, video.Status)
	}

	video.Status = target
	video.RetryCount = 0
	video.LastRetryAt = nil
	video.ErrorMessage = ""

	log.Printf("[INFO] Reset video %s to %s for reprocessing", video.VideoID, target)
	return s.repo.UpdateVideo(ctx, video)
}

// AttachTranscript stores a resolved transcript and marks the video
// ready for summarization.
func (s *service) AttachTranscript(ctx context.Context, video *models.Video, text string, source models.TranscriptSource, language string) error {
	if !video.Status.CanTransitionTo(models.VideoStatusTranscriptFetched) {
		return &InvalidTransitionError{VideoID: video.VideoID, From: video.Status, To: models.VideoStatusTranscriptFetched}
	}

	video.Transcript = text
	video.TranscriptSource = source
	video.TranscriptLanguage = language
	video.Status = models.VideoStatusTranscriptFetched
	video.ErrorMessage = ""
	video.RetryCount = 0
	video.LastRetryAt = nil

	return s.repo.UpdateVideo(ctx, video)
}

// AttachSummary stores a summary and marks the video ready for digest
// inclusion. A manual channel category is not overridden here; the
// caller resolves the effective category before persisting.
func (s *service) AttachSummary(ctx context.Context, video *models.Video, summary *models.Summary) error {
	if !video.Status.CanTransitionTo(models.VideoStatusSummarized) {
		return &InvalidTransitionError{VideoID: video.VideoID, From: video.Status, To: models.VideoStatusSummarized}
	}
	if err := summary.Validate(); err != nil {
		return fmt.Errorf("refusing to attach invalid summary to %s: %w", video.VideoID, err)
	}

	now := time.Now().UTC()
	video.Summary = summary
	video.Category = summary.Category
	video.Status = models.VideoStatusSummarized
	video.ProcessedAt = &now
	video.ErrorMessage = ""
	video.RetryCount = 0
	video.LastRetryAt = nil

	return s.repo.UpdateVideo(ctx, video)
}

// RetryableVideos returns videos with at least one failed attempt whose
// backoff delay has elapsed. Videos that exhausted their budget sit in a
// failed status and are not picked up again.
func (s *service) RetryableVideos(ctx context.Context, limit int) ([]models.Video, error) {
	var eligible []models.Video
	for _, status := range []models.VideoStatus{models.VideoStatusDiscovered, models.VideoStatusTranscriptFetched} {
		candidates, err := s.repo.GetVideosByStatus(ctx, status, 0)
		if err != nil {
			return nil, err
		}
		for _, v := range candidates {
			if v.LastRetryAt == nil {
				// never failed; its original job is still in flight
				continue
			}
			if v.CanRetryNow(s.rules.RetryDelay, s.rules.MaxRetries) {
				eligible = append(eligible, v)
				if limit > 0 && len(eligible) >= limit {
					return eligible, nil
				}
			}
		}
	}
	return eligible, nil
}

func (s *service) Get(ctx context.Context, videoID string) (*models.Video, error) {
	return s.repo.GetVideoByVideoID(ctx, videoID)
}

func (s *service) List(ctx context.Context, channelID string, page, limit int) ([]models.Video, int64, error) {
	return s.repo.GetVideosByChannel(ctx, channelID, page, limit)
}

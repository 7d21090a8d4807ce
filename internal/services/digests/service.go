package digests

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/killallgit/digest-api/internal/models"
)

type service struct {
	repo      DigestRepository
	triggers  Triggers
	recipient string
}

// Ensure service implements DigestService interface
var _ DigestService = (*service)(nil)

// NewService creates a digest service
func NewService(repo DigestRepository, triggers Triggers, recipient string) DigestService {
	if triggers.Interval <= 0 {
		triggers.Interval = 14 * 24 * time.Hour
	}
	if triggers.VideoThreshold <= 0 {
		triggers.VideoThreshold = 10
	}
	if triggers.MaxVideos <= 0 {
		triggers.MaxVideos = 50
	}
	return &service{repo: repo, triggers: triggers, recipient: recipient}
}

// ShouldTrigger fires when the wait interval has elapsed since the last
// digest or the backlog of summarized videos reaches the threshold.
// Either condition alone is enough. With no prior digest the interval
// runs from the oldest waiting video.
func (s *service) ShouldTrigger(ctx context.Context) (bool, models.TriggerReason, error) {
	count, err := s.repo.CountSummarized(ctx)
	if err != nil {
		return false, "", err
	}
	if count == 0 {
		return false, "", nil
	}
	if count >= int64(s.triggers.VideoThreshold) {
		return true, models.TriggerVolumeThreshold, nil
	}

	since, err := s.periodAnchor(ctx)
	if err != nil {
		return false, "", err
	}
	if since != nil && time.Since(*since) >= s.triggers.Interval {
		return true, models.TriggerTimeElapsed, nil
	}
	return false, "", nil
}

// periodAnchor returns the reference time the interval counts from
func (s *service) periodAnchor(ctx context.Context) (*time.Time, error) {
	latest, err := s.repo.GetLatestDigest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		return &latest.PeriodEnd, nil
	}
	return s.repo.GetOldestSummarizedAt(ctx)
}

// Generate claims the eligible videos and assembles the digest. A lost
// race with a concurrent generation is retried once; the videos the
// winner claimed are simply gone from the second attempt's view.
func (s *service) Generate(ctx context.Context, reason models.TriggerReason) (*Payload, error) {
	payload, err := s.generate(ctx, reason)
	if errors.Is(err, ErrConcurrencyConflict) {
		log.Printf("[WARN] Digest generation conflicted with a concurrent run, retrying once")
		payload, err = s.generate(ctx, reason)
	}
	return payload, err
}

func (s *service) generate(ctx context.Context, reason models.TriggerReason) (*Payload, error) {
	now := time.Now().UTC()

	periodStart := now.Add(-s.triggers.Interval)
	if anchor, err := s.periodAnchor(ctx); err != nil {
		return nil, err
	} else if anchor != nil {
		periodStart = *anchor
	}

	digest := &models.DigestHistory{
		PeriodStart:    periodStart,
		PeriodEnd:      now,
		TriggerReason:  reason,
		DeliveryStatus: models.DeliveryStatusPending,
		Recipient:      s.recipient,
	}

	videos, err := s.repo.ClaimVideos(ctx, digest, s.triggers.MaxVideos)
	if err != nil {
		return nil, err
	}

	count, totalDuration, categoryCounts := digestStats(videos)
	digest.VideoCount = count
	digest.TotalDurationSeconds = totalDuration
	digest.CategoryCounts = categoryCounts
	if err := s.repo.UpdateDigest(ctx, digest); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Generated digest %d with %d videos (%s)", digest.ID, count, reason)
	return compose(digest, videos), nil
}

// Rebuild reassembles an existing digest's payload from its bound
// videos so a failed delivery can be retried without claiming again.
func (s *service) Rebuild(ctx context.Context, digestID uint) (*Payload, error) {
	digest, videos, err := s.Get(ctx, digestID)
	if err != nil {
		return nil, err
	}
	return compose(digest, videos), nil
}

func (s *service) MarkSent(ctx context.Context, digest *models.DigestHistory, deliveryID string) error {
	now := time.Now().UTC()
	digest.DeliveryStatus = models.DeliveryStatusSent
	digest.DeliveryID = deliveryID
	digest.DeliveryError = ""
	digest.SentAt = &now
	return s.repo.UpdateDigest(ctx, digest)
}

func (s *service) MarkFailed(ctx context.Context, digest *models.DigestHistory, cause error) error {
	digest.DeliveryStatus = models.DeliveryStatusFailed
	if cause != nil {
		digest.DeliveryError = cause.Error()
	}
	return s.repo.UpdateDigest(ctx, digest)
}

func (s *service) Latest(ctx context.Context) (*models.DigestHistory, error) {
	return s.repo.GetLatestDigest(ctx)
}

func (s *service) Get(ctx context.Context, id uint) (*models.DigestHistory, []models.Video, error) {
	digest, err := s.repo.GetDigestByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	videos, err := s.repo.GetDigestVideos(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return digest, videos, nil
}

func (s *service) List(ctx context.Context, page, limit int) ([]models.DigestHistory, int64, error) {
	return s.repo.ListDigests(ctx, page, limit)
}

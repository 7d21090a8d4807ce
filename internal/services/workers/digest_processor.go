package workers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/digests"
	"github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/mailer"
)

// DigestProcessor assembles and delivers digest emails
type DigestProcessor struct {
	jobService    jobs.Service
	digestService digests.DigestService
	sender        mailer.Sender
	fromAddress   string
}

// NewDigestProcessor creates a new digest processor
func NewDigestProcessor(
	jobService jobs.Service,
	digestService digests.DigestService,
	sender mailer.Sender,
	fromAddress string,
) *DigestProcessor {
	return &DigestProcessor{
		jobService:    jobService,
		digestService: digestService,
		sender:        sender,
		fromAddress:   fromAddress,
	}
}

// CanProcess returns true if this processor can handle the job type
func (p *DigestProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeDigestGeneration
}

// ProcessJob processes a digest generation job. Scheduled jobs evaluate
// the trigger conditions first; manual jobs skip them but still bail
// out when no videos are waiting.
func (p *DigestProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	if !p.CanProcess(job.Type) {
		return fmt.Errorf("unsupported job type: %s", job.Type)
	}

	// A digest whose delivery failed takes precedence over generating
	// a new one; its videos are already claimed.
	if done, err := p.redeliverFailed(ctx, job); err != nil || done {
		return err
	}

	reason := models.TriggerReason("")
	if manual, _ := job.GetPayloadString("reason"); manual == string(models.TriggerManual) {
		reason = models.TriggerManual
	}

	if reason != models.TriggerManual {
		fire, triggerReason, err := p.digestService.ShouldTrigger(ctx)
		if err != nil {
			return models.NewSystemError("trigger_check", "evaluating digest trigger", err.Error(), err)
		}
		if !fire {
			log.Printf("[DEBUG] Digest trigger conditions not met, skipping")
			job.SetResult("triggered", false)
			return p.jobService.CompleteJob(ctx, job.ID, job.Result)
		}
		reason = triggerReason
	}

	payload, err := p.digestService.Generate(ctx, reason)
	if err != nil {
		if errors.Is(err, digests.ErrNoVideos) {
			log.Printf("[INFO] No summarized videos waiting, digest skipped")
			job.SetResult("triggered", false)
			return p.jobService.CompleteJob(ctx, job.ID, job.Result)
		}
		if errors.Is(err, digests.ErrConcurrencyConflict) {
			return models.NewTransientError("digest_conflict", "concurrent digest generation", "", err)
		}
		return models.NewSystemError("digest_generate", "generating digest", err.Error(), err)
	}

	if err := p.deliver(ctx, payload); err != nil {
		return err
	}

	job.SetResult("triggered", true)
	job.SetResult("digest_id", payload.Digest.ID)
	job.SetResult("video_count", payload.Digest.VideoCount)
	return p.jobService.CompleteJob(ctx, job.ID, job.Result)
}

// redeliverFailed retries the send of the latest digest when its
// delivery previously failed. Returns true when it handled the job.
func (p *DigestProcessor) redeliverFailed(ctx context.Context, job *models.Job) (bool, error) {
	latest, err := p.digestService.Latest(ctx)
	if err != nil {
		return false, models.NewSystemError("digest_lookup", "loading latest digest", err.Error(), err)
	}
	if latest == nil || latest.DeliveryStatus != models.DeliveryStatusFailed {
		return false, nil
	}

	log.Printf("[INFO] Retrying delivery of digest %d", latest.ID)
	payload, err := p.digestService.Rebuild(ctx, latest.ID)
	if err != nil {
		return false, models.NewSystemError("digest_rebuild", "rebuilding digest payload", err.Error(), err)
	}
	if err := p.deliver(ctx, payload); err != nil {
		return false, err
	}

	job.SetResult("redelivered_digest_id", latest.ID)
	return true, p.jobService.CompleteJob(ctx, job.ID, job.Result)
}

// deliver renders and sends the digest email, recording the outcome on
// the digest row. A failed send does not roll the digest back; the
// videos stay bound to it and delivery can be retried by job retry.
func (p *DigestProcessor) deliver(ctx context.Context, payload *digests.Payload) error {
	subject, htmlBody, textBody, err := mailer.RenderDigest(payload)
	if err != nil {
		if markErr := p.digestService.MarkFailed(ctx, payload.Digest, err); markErr != nil {
			log.Printf("[ERROR] Recording render failure: %v", markErr)
		}
		return models.NewSystemError("digest_render", "rendering digest email", err.Error(), err)
	}

	deliveryID, err := p.sender.Send(ctx, mailer.Email{
		From:    p.fromAddress,
		To:      payload.Digest.Recipient,
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
	})
	if err != nil {
		if markErr := p.digestService.MarkFailed(ctx, payload.Digest, err); markErr != nil {
			log.Printf("[ERROR] Recording delivery failure: %v", markErr)
		}
		return models.NewTransientError("digest_delivery", "sending digest email", "", err)
	}

	if err := p.digestService.MarkSent(ctx, payload.Digest, deliveryID); err != nil {
		return models.NewSystemError("digest_update", "recording delivery", err.Error(), err)
	}

	log.Printf("[INFO] Digest %d delivered to %s (%d videos, delivery %s)",
		payload.Digest.ID, payload.Digest.Recipient, payload.Digest.VideoCount, deliveryID)
	return nil
}

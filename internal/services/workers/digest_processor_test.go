package workers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/digests"
	"github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/mailer"
)

type fakeSender struct {
	sent []mailer.Email
	err  error
}

func (f *fakeSender) Send(ctx context.Context, email mailer.Email) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, email)
	return fmt.Sprintf("delivery-%d", len(f.sent)), nil
}

type digestEnv struct {
	db            *gorm.DB
	jobService    jobs.Service
	digestService digests.DigestService
	sender        *fakeSender
	processor     *DigestProcessor
}

func setupDigestEnv(t *testing.T) *digestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}, &models.Video{}, &models.DigestHistory{}))

	jobService := jobs.NewService(jobs.NewRepository(db))
	digestService := digests.NewService(digests.NewRepository(db),
		digests.Triggers{Interval: 14 * 24 * time.Hour, VideoThreshold: 10, MaxVideos: 50},
		"me@example.com")
	sender := &fakeSender{}

	return &digestEnv{
		db:            db,
		jobService:    jobService,
		digestService: digestService,
		sender:        sender,
		processor:     NewDigestProcessor(jobService, digestService, sender, "digest@example.com"),
	}
}

func (e *digestEnv) seedSummarized(t *testing.T, n int) {
	t.Helper()
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		video := &models.Video{
			VideoID:         fmt.Sprintf("vid-%d-%d", now.UnixNano(), i),
			ChannelID:       "chan-1",
			Title:           fmt.Sprintf("Video %d", i),
			DurationSeconds: 600,
			PublishedAt:     now.Add(time.Duration(-i) * time.Hour),
			Status:          models.VideoStatusSummarized,
			Category:        models.CategoryHealth,
			ProcessedAt:     &now,
			Summary: &models.Summary{
				Category:        models.CategoryHealth,
				CoreMessage:     "Kernaussage.",
				DetailedSummary: "Details.",
			},
		}
		require.NoError(t, e.db.Create(video).Error)
	}
}

func (e *digestEnv) claimDigestJob(t *testing.T, payload models.JobPayload) *models.Job {
	t.Helper()
	_, err := e.jobService.EnqueueJob(context.Background(), models.JobTypeDigestGeneration, payload)
	require.NoError(t, err)
	job, err := e.jobService.ClaimNextJob(context.Background(), "worker-test", nil)
	require.NoError(t, err)
	return job
}

func TestDigestProcessor_ScheduledBelowThreshold(t *testing.T) {
	env := setupDigestEnv(t)
	ctx := context.Background()
	env.seedSummarized(t, 3)
	job := env.claimDigestJob(t, models.JobPayload{"reason": "scheduled"})

	require.NoError(t, env.processor.ProcessJob(ctx, job))

	assert.Empty(t, env.sender.sent, "no digest below the thresholds")
	got, err := env.jobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestDigestProcessor_ScheduledVolumeTrigger(t *testing.T) {
	env := setupDigestEnv(t)
	ctx := context.Background()
	env.seedSummarized(t, 10)
	job := env.claimDigestJob(t, models.JobPayload{"reason": "scheduled"})

	require.NoError(t, env.processor.ProcessJob(ctx, job))

	require.Len(t, env.sender.sent, 1)
	email := env.sender.sent[0]
	assert.Equal(t, "me@example.com", email.To)
	assert.Equal(t, "digest@example.com", email.From)
	assert.Contains(t, email.Subject, "10 Videos")

	latest, err := env.digestService.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusSent, latest.DeliveryStatus)
	assert.Equal(t, models.TriggerVolumeThreshold, latest.TriggerReason)
}

func TestDigestProcessor_ManualBypassesThresholds(t *testing.T) {
	env := setupDigestEnv(t)
	ctx := context.Background()
	env.seedSummarized(t, 2)
	job := env.claimDigestJob(t, models.JobPayload{"reason": string(models.TriggerManual)})

	require.NoError(t, env.processor.ProcessJob(ctx, job))

	require.Len(t, env.sender.sent, 1)
	latest, err := env.digestService.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerManual, latest.TriggerReason)
}

func TestDigestProcessor_ManualWithEmptyBacklog(t *testing.T) {
	env := setupDigestEnv(t)
	ctx := context.Background()
	job := env.claimDigestJob(t, models.JobPayload{"reason": string(models.TriggerManual)})

	require.NoError(t, env.processor.ProcessJob(ctx, job))

	assert.Empty(t, env.sender.sent)
	latest, err := env.digestService.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest, "no digest record for an empty backlog")
}

func TestDigestProcessor_DeliveryFailureAndRetry(t *testing.T) {
	env := setupDigestEnv(t)
	ctx := context.Background()
	env.seedSummarized(t, 10)

	env.sender.err = errors.New("smtp gateway down")
	job := env.claimDigestJob(t, models.JobPayload{"reason": "scheduled"})

	err := env.processor.ProcessJob(ctx, job)
	require.Error(t, err)
	var structured *models.StructuredJobError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, models.ErrorTypeTransient, structured.Type)

	latest, lookupErr := env.digestService.Latest(ctx)
	require.NoError(t, lookupErr)
	assert.Equal(t, models.DeliveryStatusFailed, latest.DeliveryStatus)
	firstID := latest.ID

	// Retry delivers the existing digest instead of generating another
	env.sender.err = nil
	retryJob := env.claimDigestJob(t, models.JobPayload{"reason": "scheduled"})
	require.NoError(t, env.processor.ProcessJob(ctx, retryJob))

	require.Len(t, env.sender.sent, 1)
	latest, lookupErr = env.digestService.Latest(ctx)
	require.NoError(t, lookupErr)
	assert.Equal(t, firstID, latest.ID, "retry must not create a second digest")
	assert.Equal(t, models.DeliveryStatusSent, latest.DeliveryStatus)
}

package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/channels"
	"github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/summaries"
	"github.com/killallgit/digest-api/internal/services/transcripts"
	"github.com/killallgit/digest-api/internal/services/videos"
)

type fakeResolver struct {
	transcript *transcripts.Transcript
	err        error
}

func (f *fakeResolver) Resolve(ctx context.Context, videoID string) (*transcripts.Transcript, error) {
	return f.transcript, f.err
}

type fakeSummarizer struct {
	summary *models.Summary
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, title, transcript string) (*models.Summary, error) {
	return f.summary, f.err
}

type processorEnv struct {
	db             *gorm.DB
	jobService     jobs.Service
	videoService   videos.VideoService
	channelService channels.ChannelService
}

func setupProcessorEnv(t *testing.T) *processorEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}, &models.Video{}, &models.Channel{}))

	return &processorEnv{
		db:             db,
		jobService:     jobs.NewService(jobs.NewRepository(db)),
		videoService:   videos.NewService(videos.NewRepository(db), videos.EligibilityRules{MinDuration: time.Minute, MaxRetries: 3, RetryDelay: time.Minute}),
		channelService: channels.NewService(channels.NewRepository(db)),
	}
}

func (e *processorEnv) seedVideo(t *testing.T, videoID string) *models.Video {
	t.Helper()
	video := &models.Video{
		VideoID:         videoID,
		ChannelID:       "chan-1",
		Title:           "Test Video",
		DurationSeconds: 600,
		PublishedAt:     time.Now().UTC(),
	}
	stored, err := e.videoService.Register(context.Background(), video)
	require.NoError(t, err)
	require.True(t, stored)
	return video
}

func (e *processorEnv) seedJob(t *testing.T, videoID string) *models.Job {
	t.Helper()
	_, err := e.jobService.EnqueueJob(context.Background(), models.JobTypeVideoProcess,
		models.JobPayload{"video_id": videoID})
	require.NoError(t, err)
	claimed, err := e.jobService.ClaimNextJob(context.Background(), "worker-test", nil)
	require.NoError(t, err)
	return claimed
}

func validSummary() *models.Summary {
	return &models.Summary{
		Category:        models.CategoryHealth,
		CoreMessage:     "Kernaussage.",
		DetailedSummary: "Details.",
		KeyTakeaways:    []string{"Eins"},
	}
}

func TestVideoProcessor_Success(t *testing.T) {
	env := setupProcessorEnv(t)
	ctx := context.Background()
	env.seedVideo(t, "vid-1")
	job := env.seedJob(t, "vid-1")

	resolver := &fakeResolver{transcript: &transcripts.Transcript{
		Text: "transcript", Source: models.TranscriptSourcePrimary, Language: "de",
	}}
	processor := NewVideoProcessor(env.jobService, env.videoService, env.channelService,
		resolver, &fakeSummarizer{summary: validSummary()})

	require.NoError(t, processor.ProcessJob(ctx, job))

	video, err := env.videoService.Get(ctx, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusSummarized, video.Status)
	assert.Equal(t, models.CategoryHealth, video.Category)

	got, err := env.jobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestVideoProcessor_ManualCategoryOverride(t *testing.T) {
	env := setupProcessorEnv(t)
	ctx := context.Background()

	_, err := env.channelService.Subscribe(ctx, "chan-1", "Volleyball Channel")
	require.NoError(t, err)
	override := models.CategoryBeachVolleyball
	require.NoError(t, env.channelService.SetManualCategory(ctx, "chan-1", &override))

	env.seedVideo(t, "vid-1")
	job := env.seedJob(t, "vid-1")

	resolver := &fakeResolver{transcript: &transcripts.Transcript{
		Text: "transcript", Source: models.TranscriptSourcePrimary, Language: "de",
	}}
	processor := NewVideoProcessor(env.jobService, env.videoService, env.channelService,
		resolver, &fakeSummarizer{summary: validSummary()})

	require.NoError(t, processor.ProcessJob(ctx, job))

	video, err := env.videoService.Get(ctx, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryBeachVolleyball, video.Category,
		"manual channel category must override the model's pick")
}

func TestVideoProcessor_TranscriptFailure(t *testing.T) {
	env := setupProcessorEnv(t)
	ctx := context.Background()
	env.seedVideo(t, "vid-1")
	job := env.seedJob(t, "vid-1")

	processor := NewVideoProcessor(env.jobService, env.videoService, env.channelService,
		&fakeResolver{err: transcripts.ErrNoTranscript}, &fakeSummarizer{summary: validSummary()})

	err := processor.ProcessJob(ctx, job)
	require.Error(t, err)

	var structured *models.StructuredJobError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, models.ErrorTypeTransient, structured.Type)

	video, getErr := env.videoService.Get(ctx, "vid-1")
	require.NoError(t, getErr)
	assert.Equal(t, models.VideoStatusDiscovered, video.Status,
		"the video stays retryable while its budget lasts")
	assert.Equal(t, 1, video.RetryCount)
}

func TestVideoProcessor_RetryAfterTransientFailure(t *testing.T) {
	env := setupProcessorEnv(t)
	ctx := context.Background()
	env.seedVideo(t, "vid-retry")
	job := env.seedJob(t, "vid-retry")

	resolver := &fakeResolver{transcript: &transcripts.Transcript{
		Text: "transcript", Source: models.TranscriptSourcePrimary, Language: "de",
	}}
	flaky := &fakeSummarizer{err: &summaries.SummarizationError{
		Message: "upstream timed out", Retryable: true,
	}}
	processor := NewVideoProcessor(env.jobService, env.videoService, env.channelService, resolver, flaky)

	require.Error(t, processor.ProcessJob(ctx, job))

	video, err := env.videoService.Get(ctx, "vid-retry")
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusTranscriptFetched, video.Status)
	assert.Equal(t, 1, video.RetryCount)

	// The retry sweep sees the video once its backoff elapsed
	past := time.Now().UTC().Add(-2 * time.Minute)
	video.LastRetryAt = &past
	require.NoError(t, env.db.Save(video).Error)

	eligible, err := env.videoService.RetryableVideos(ctx, 0)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "vid-retry", eligible[0].VideoID)

	// A second run with a healthy summarizer finishes the video
	flaky.err = nil
	flaky.summary = validSummary()
	retryJob := env.seedJob(t, "vid-retry")
	require.NoError(t, processor.ProcessJob(ctx, retryJob))

	video, err = env.videoService.Get(ctx, "vid-retry")
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusSummarized, video.Status)
	assert.Equal(t, 0, video.RetryCount)
}

func TestVideoProcessor_ExhaustedBudgetIsSkipped(t *testing.T) {
	env := setupProcessorEnv(t)
	ctx := context.Background()
	env.seedVideo(t, "vid-spent")

	resolver := &fakeResolver{err: transcripts.ErrNoTranscript}
	processor := NewVideoProcessor(env.jobService, env.videoService, env.channelService,
		resolver, &fakeSummarizer{summary: validSummary()})

	for i := 0; i < 3; i++ {
		job := env.seedJob(t, "vid-spent")
		require.Error(t, processor.ProcessJob(ctx, job))
	}

	video, err := env.videoService.Get(ctx, "vid-spent")
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusTranscriptFailed, video.Status)

	eligible, err := env.videoService.RetryableVideos(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, eligible, "a spent video must not be re-queued by the sweep")

	// Further jobs complete as no-ops
	job := env.seedJob(t, "vid-spent")
	require.NoError(t, processor.ProcessJob(ctx, job))
	got, err := env.jobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestVideoProcessor_PermanentSummaryFailure(t *testing.T) {
	env := setupProcessorEnv(t)
	ctx := context.Background()
	env.seedVideo(t, "vid-1")
	job := env.seedJob(t, "vid-1")

	resolver := &fakeResolver{transcript: &transcripts.Transcript{
		Text: "transcript", Source: models.TranscriptSourcePrimary, Language: "de",
	}}
	summarizer := &fakeSummarizer{err: &summaries.SummarizationError{
		Message: "output never matched the schema", Retryable: false,
	}}
	processor := NewVideoProcessor(env.jobService, env.videoService, env.channelService, resolver, summarizer)

	err := processor.ProcessJob(ctx, job)
	require.Error(t, err)

	var structured *models.StructuredJobError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, models.ErrorTypeSchema, structured.Type)
	assert.False(t, structured.Retryable())

	video, getErr := env.videoService.Get(ctx, "vid-1")
	require.NoError(t, getErr)
	assert.Equal(t, models.VideoStatusSummaryFailed, video.Status)
}

func TestVideoProcessor_ResumesAfterTranscript(t *testing.T) {
	env := setupProcessorEnv(t)
	ctx := context.Background()
	video := env.seedVideo(t, "vid-1")

	// First pass already stored a transcript
	require.NoError(t, env.videoService.AttachTranscript(ctx, video, "stored transcript",
		models.TranscriptSourceFallback, "de"))

	job := env.seedJob(t, "vid-1")
	resolver := &fakeResolver{err: transcripts.ErrNoTranscript}
	processor := NewVideoProcessor(env.jobService, env.videoService, env.channelService,
		resolver, &fakeSummarizer{summary: validSummary()})

	require.NoError(t, processor.ProcessJob(ctx, job),
		"a stored transcript must not be re-resolved")

	got, err := env.videoService.Get(ctx, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusSummarized, got.Status)
	assert.Equal(t, models.TranscriptSourceFallback, got.TranscriptSource)
}

func TestVideoProcessor_MissingVideo(t *testing.T) {
	env := setupProcessorEnv(t)
	ctx := context.Background()

	job, err := env.jobService.EnqueueJob(ctx, models.JobTypeVideoProcess,
		models.JobPayload{"video_id": "ghost"})
	require.NoError(t, err)

	processor := NewVideoProcessor(env.jobService, env.videoService, env.channelService,
		&fakeResolver{}, &fakeSummarizer{summary: validSummary()})

	err = processor.ProcessJob(ctx, job)
	var structured *models.StructuredJobError
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, models.ErrorTypePermanent, structured.Type)
}

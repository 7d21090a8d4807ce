package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/killallgit/digest-api/internal/database"
	"github.com/killallgit/digest-api/internal/models"
	channelsService "github.com/killallgit/digest-api/internal/services/channels"
	digestsService "github.com/killallgit/digest-api/internal/services/digests"
	jobsService "github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/mailer"
	"github.com/killallgit/digest-api/internal/services/summaries"
	"github.com/killallgit/digest-api/internal/services/transcripts"
	videosService "github.com/killallgit/digest-api/internal/services/videos"
	"github.com/killallgit/digest-api/internal/services/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PipelineTestSuite holds all dependencies for end-to-end pipeline tests
type PipelineTestSuite struct {
	t              *testing.T
	db             *database.DB
	jobService     jobsService.Service
	channelService channelsService.ChannelService
	videoService   videosService.VideoService
	digestService  digestsService.DigestService
	workerPool     *workers.WorkerPool

	captionServer *httptest.Server
	resendServer  *httptest.Server
	sentEmails    []map[string]any
	cleanupFuncs  []func()
}

// fakeGenerator answers every summarization request with a fixed valid
// summary document
type fakeGenerator struct{}

func (fakeGenerator) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	doc := map[string]any{
		"category":         "Coding/AI",
		"core_message":     "Automatisierung spart Zeit.",
		"detailed_summary": "Das Video zeigt, wie Arbeitsschritte automatisiert werden.",
		"key_takeaways":    []string{"Wiederholbare Schritte automatisieren"},
		"timestamps":       []map[string]any{{"offset_seconds": 30, "description": "Einstieg"}},
		"action_items":     []string{"Eigenen Ablauf dokumentieren"},
	}
	raw, err := json.Marshal(doc)
	return string(raw), err
}

func setupPipelineSuite(t *testing.T) *PipelineTestSuite {
	t.Helper()

	suite := &PipelineTestSuite{t: t}

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	suite.db = db
	suite.cleanupFuncs = append(suite.cleanupFuncs, func() { _ = db.Close() })

	// Caption proxy serving one manual German track
	suite.captionServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/captions/list":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"tracks": []map[string]any{
					{"language": "de", "kind": "standard", "isTranslatable": true},
				},
			})
		case "/captions/fetch":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"content": "Willkommen zum Video. Heute geht es um Automatisierung.",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	suite.cleanupFuncs = append(suite.cleanupFuncs, suite.captionServer.Close)

	// Mail API recording every delivery
	suite.resendServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		suite.sentEmails = append(suite.sentEmails, payload)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("email-%d", len(suite.sentEmails))})
	}))
	suite.cleanupFuncs = append(suite.cleanupFuncs, suite.resendServer.Close)

	suite.jobService = jobsService.NewService(jobsService.NewRepository(db.DB))
	suite.channelService = channelsService.NewService(channelsService.NewRepository(db.DB))
	suite.videoService = videosService.NewService(videosService.NewRepository(db.DB), videosService.EligibilityRules{
		MinDuration: time.Minute,
		MaxRetries:  3,
		RetryDelay:  time.Minute,
	})
	suite.digestService = digestsService.NewService(
		digestsService.NewRepository(db.DB),
		digestsService.Triggers{Interval: 14 * 24 * time.Hour, VideoThreshold: 10, MaxVideos: 50},
		"reader@example.com",
	)

	transcriptService := transcripts.NewService(
		transcripts.NewYouTubeCaptionClient(transcripts.YouTubeCaptionConfig{
			BaseURL: suite.captionServer.URL,
			APIKey:  "test-key",
		}),
		nil,
		"de",
		"en",
	)
	summaryService := summaries.NewService(fakeGenerator{}, summaries.Options{})
	sender := mailer.NewResendClient(mailer.ResendConfig{
		APIKey:  "test-key",
		BaseURL: suite.resendServer.URL,
	})

	pool := workers.NewWorkerPool(suite.jobService, 2, 20*time.Millisecond)
	pool.RegisterProcessor(workers.NewVideoProcessor(
		suite.jobService, suite.videoService, suite.channelService, transcriptService, summaryService,
	))
	pool.RegisterProcessor(workers.NewDigestProcessor(
		suite.jobService, suite.digestService, sender, "digest@example.com",
	))
	suite.workerPool = pool

	return suite
}

func (s *PipelineTestSuite) teardown() {
	for i := len(s.cleanupFuncs) - 1; i >= 0; i-- {
		s.cleanupFuncs[i]()
	}
}

func (s *PipelineTestSuite) waitForJob(jobID uint, want models.JobStatus) {
	s.t.Helper()
	require.Eventually(s.t, func() bool {
		status, err := s.jobService.GetJobStatus(context.Background(), jobID)
		return err == nil && status == want
	}, 5*time.Second, 20*time.Millisecond, "job %d never reached %s", jobID, want)
}

func TestVideoToDigestPipeline(t *testing.T) {
	suite := setupPipelineSuite(t)
	defer suite.teardown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, suite.workerPool.Start(ctx))
	defer suite.workerPool.Stop()

	// Subscribe a channel and register one of its uploads
	_, err := suite.channelService.Subscribe(ctx, "UCtech", "Tech Weekly")
	require.NoError(t, err)

	video := &models.Video{
		VideoID:         "vid-e2e",
		ChannelID:       "UCtech",
		Title:           "Automatisierung im Alltag",
		DurationSeconds: 900,
		PublishedAt:     time.Now().Add(-48 * time.Hour),
	}
	registered, err := suite.videoService.Register(ctx, video)
	require.NoError(t, err)
	require.True(t, registered)

	// Process the video through transcript and summary
	job, err := suite.jobService.EnqueueJob(ctx, models.JobTypeVideoProcess, models.JobPayload{"video_id": "vid-e2e"})
	require.NoError(t, err)
	suite.waitForJob(job.ID, models.JobStatusCompleted)

	processed, err := suite.videoService.Get(ctx, "vid-e2e")
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusSummarized, processed.Status)
	assert.Equal(t, models.TranscriptSourcePrimary, processed.TranscriptSource)
	assert.Equal(t, "de", processed.TranscriptLanguage)
	require.NotNil(t, processed.Summary)
	assert.Equal(t, models.CategoryCodingAI, processed.Summary.Category)

	// Generate and deliver the digest
	digestJob, err := suite.jobService.EnqueueJob(ctx, models.JobTypeDigestGeneration, models.JobPayload{"reason": "manual"})
	require.NoError(t, err)
	suite.waitForJob(digestJob.ID, models.JobStatusCompleted)

	require.Len(t, suite.sentEmails, 1)
	email := suite.sentEmails[0]
	assert.Equal(t, "digest@example.com", email["from"])
	assert.Contains(t, email["subject"], "Dein Video-Digest")

	digest, err := suite.digestService.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, digest)
	assert.Equal(t, models.DeliveryStatusSent, digest.DeliveryStatus)
	assert.Equal(t, 1, digest.VideoCount)
	assert.Equal(t, models.TriggerManual, digest.TriggerReason)

	// The consumed video is out of the next digest's backlog
	consumed, err := suite.videoService.Get(ctx, "vid-e2e")
	require.NoError(t, err)
	assert.Equal(t, models.VideoStatusDigested, consumed.Status)
	require.NotNil(t, consumed.DigestID)
	assert.Equal(t, digest.ID, *consumed.DigestID)
}

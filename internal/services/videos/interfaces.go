package videos

import (
	"context"
	"time"

	"github.com/killallgit/digest-api/internal/models"
)

// VideoRepository defines the interface for video data persistence
type VideoRepository interface {
	// Create operations
	CreateVideo(ctx context.Context, video *models.Video) error

	// Read operations
	GetVideoByID(ctx context.Context, id uint) (*models.Video, error)
	GetVideoByVideoID(ctx context.Context, videoID string) (*models.Video, error)
	GetVideosByStatus(ctx context.Context, status models.VideoStatus, limit int) ([]models.Video, error)
	GetVideosByChannel(ctx context.Context, channelID string, page, limit int) ([]models.Video, int64, error)
	CountByStatus(ctx context.Context, status models.VideoStatus) (int64, error)
	GetOldestByStatus(ctx context.Context, status models.VideoStatus) (*models.Video, error)

	// Update operations
	UpdateVideo(ctx context.Context, video *models.Video) error

	// Delete operations
	DeleteVideo(ctx context.Context, id uint) error
}

// VideoService manages the video processing lifecycle
type VideoService interface {
	// Register stores a newly discovered video after eligibility checks
	Register(ctx context.Context, video *models.Video) (bool, error)

	// Transition moves a video to a new lifecycle status
	Transition(ctx context.Context, video *models.Video, status models.VideoStatus) error

	// RecordFailure tracks a failed attempt, entering the failure status
	// only once the retry budget is spent
	RecordFailure(ctx context.Context, video *models.Video, status models.VideoStatus, cause error) error

	// FailPermanently moves a video to a failure status regardless of
	// its remaining retry budget
	FailPermanently(ctx context.Context, video *models.Video, status models.VideoStatus, cause error) error

	// ResetForRetry returns a failed video to its pre-failure status
	// with a fresh retry budget
	ResetForRetry(ctx context.Context, video *models.Video) error

	// AttachTranscript stores a resolved transcript and advances the status
	AttachTranscript(ctx context.Context, video *models.Video, text string, source models.TranscriptSource, language string) error

	// AttachSummary stores a summary and advances the status
	AttachSummary(ctx context.Context, video *models.Video, summary *models.Summary) error

	// RetryableVideos returns videos with failed attempts whose retry
	// delay has elapsed
	RetryableVideos(ctx context.Context, limit int) ([]models.Video, error)

	// Get looks up a single video by its platform ID
	Get(ctx context.Context, videoID string) (*models.Video, error)

	// List returns videos for a channel with pagination
	List(ctx context.Context, channelID string, page, limit int) ([]models.Video, int64, error)
}

// EligibilityRules filters discovered videos before registration
type EligibilityRules struct {
	MinDuration time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

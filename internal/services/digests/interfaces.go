package digests

import (
	"context"
	"time"

	"github.com/killallgit/digest-api/internal/models"
)

// DigestRepository defines the interface for digest data persistence
type DigestRepository interface {
	// Read operations
	GetDigestByID(ctx context.Context, id uint) (*models.DigestHistory, error)
	GetLatestDigest(ctx context.Context) (*models.DigestHistory, error)
	ListDigests(ctx context.Context, page, limit int) ([]models.DigestHistory, int64, error)
	CountSummarized(ctx context.Context) (int64, error)
	GetOldestSummarizedAt(ctx context.Context) (*time.Time, error)
	GetDigestVideos(ctx context.Context, digestID uint) ([]models.Video, error)

	// ClaimVideos atomically creates the digest record and binds up to
	// maxVideos summarized videos to it, newest first. Videos left over
	// stay summarized for the next digest.
	ClaimVideos(ctx context.Context, digest *models.DigestHistory, maxVideos int) ([]models.Video, error)

	// Update operations
	UpdateDigest(ctx context.Context, digest *models.DigestHistory) error
}

// Triggers holds the digest firing thresholds
type Triggers struct {
	Interval       time.Duration
	VideoThreshold int
	MaxVideos      int
}

// DigestService evaluates triggers and assembles digests
type DigestService interface {
	// ShouldTrigger reports whether a scheduled digest is due and why
	ShouldTrigger(ctx context.Context) (bool, models.TriggerReason, error)

	// Generate claims eligible videos and builds the digest payload.
	// Returns ErrNoVideos when nothing is eligible.
	Generate(ctx context.Context, reason models.TriggerReason) (*Payload, error)

	// Rebuild reassembles the payload of an existing digest, for
	// redelivery after a failed send
	Rebuild(ctx context.Context, digestID uint) (*Payload, error)

	// MarkSent records a successful delivery
	MarkSent(ctx context.Context, digest *models.DigestHistory, deliveryID string) error

	// MarkFailed records a failed delivery
	MarkFailed(ctx context.Context, digest *models.DigestHistory, cause error) error

	// Latest returns the most recent digest, or nil when none exists
	Latest(ctx context.Context) (*models.DigestHistory, error)

	// Get returns a digest with its videos
	Get(ctx context.Context, id uint) (*models.DigestHistory, []models.Video, error)

	// List returns digest history with pagination
	List(ctx context.Context, page, limit int) ([]models.DigestHistory, int64, error)
}

package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// VideoStatus tracks a video through the processing pipeline
type VideoStatus string

const (
	VideoStatusDiscovered        VideoStatus = "discovered"
	VideoStatusTranscriptFetched VideoStatus = "transcript_fetched"
	VideoStatusTranscriptFailed  VideoStatus = "transcript_failed"
	VideoStatusSummarized        VideoStatus = "summarized"
	VideoStatusSummaryFailed     VideoStatus = "summary_failed"
	VideoStatusDigested          VideoStatus = "digested"
)

// videoTransitions lists the allowed forward edges. Retry re-enters the
// same status and is handled separately from this table. The failed
// statuses have a single edge back to their pre-failure status so a
// manual re-queue can revive a video whose retry budget is spent.
var videoTransitions = map[VideoStatus][]VideoStatus{
	VideoStatusDiscovered:        {VideoStatusTranscriptFetched, VideoStatusTranscriptFailed},
	VideoStatusTranscriptFetched: {VideoStatusSummarized, VideoStatusSummaryFailed},
	VideoStatusSummarized:        {VideoStatusDigested},
	VideoStatusTranscriptFailed:  {VideoStatusDiscovered},
	VideoStatusSummaryFailed:     {VideoStatusTranscriptFetched},
	VideoStatusDigested:          {},
}

// CanTransitionTo reports whether the edge from s to next is allowed.
// Re-entering the same status is permitted for retry bookkeeping.
func (s VideoStatus) CanTransitionTo(next VideoStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range videoTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no automatic processing follows this status.
func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusTranscriptFailed ||
		s == VideoStatusSummaryFailed ||
		s == VideoStatusDigested
}

// TranscriptSource records which provider produced the transcript
type TranscriptSource string

const (
	TranscriptSourcePrimary  TranscriptSource = "primary"
	TranscriptSourceFallback TranscriptSource = "fallback"
)

// Video represents a discovered video and its processing results
type Video struct {
	gorm.Model
	VideoID   string `json:"video_id" gorm:"uniqueIndex;not null"`
	ChannelID string `json:"channel_id" gorm:"not null;index"`

	// Metadata from discovery
	Title           string    `json:"title" gorm:"not null"`
	Description     string    `json:"description" gorm:"type:text"`
	DurationSeconds int       `json:"duration_seconds" gorm:"default:0"`
	PublishedAt     time.Time `json:"published_at" gorm:"index"`
	ThumbnailURL    string    `json:"thumbnail_url"`

	// Pipeline state
	Status       VideoStatus `json:"status" gorm:"default:'discovered';index:idx_videos_status_digest"`
	ErrorMessage string      `json:"error_message,omitempty" gorm:"type:text"`
	RetryCount   int         `json:"retry_count" gorm:"default:0"`
	LastRetryAt  *time.Time  `json:"last_retry_at"`

	// Transcript results
	Transcript         string           `json:"transcript,omitempty" gorm:"type:text"`
	TranscriptSource   TranscriptSource `json:"transcript_source,omitempty"`
	TranscriptLanguage string           `json:"transcript_language,omitempty"`

	// Summarization results
	Category Category `json:"category,omitempty"`
	Summary  *Summary `json:"summary,omitempty" gorm:"type:json"`

	// Set exactly once when the video is consumed by a digest
	DigestID *uint `json:"digest_id" gorm:"index:idx_videos_status_digest"`

	ProcessedAt *time.Time `json:"processed_at"`
}

// TableName specifies the table name for GORM
func (Video) TableName() string {
	return "videos"
}

// URL returns the public watch URL for the video.
func (v *Video) URL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", v.VideoID)
}

// DurationFormatted renders the duration as H:MM:SS or MM:SS.
func (v *Video) DurationFormatted() string {
	hours := v.DurationSeconds / 3600
	minutes := (v.DurationSeconds % 3600) / 60
	seconds := v.DurationSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// CanRetryNow reports whether a scheduled re-attempt is due, enforcing
// exponential minimum spacing from the last attempt: minDelay * 2^retryCount.
func (v *Video) CanRetryNow(minDelay time.Duration, maxRetries int) bool {
	if v.RetryCount >= maxRetries {
		return false
	}
	if v.LastRetryAt == nil {
		return true
	}
	backoff := minDelay * time.Duration(1<<uint(v.RetryCount))
	return time.Since(*v.LastRetryAt) >= backoff
}

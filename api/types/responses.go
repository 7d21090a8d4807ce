package types

import "github.com/killallgit/digest-api/internal/models"

// Status constants for API responses
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusQueued = "queued"
)

// BaseResponse contains fields common to all API responses
type BaseResponse struct {
	Status  string `json:"status"`            // One of the Status constants above
	Message string `json:"message,omitempty"` // Human-readable message
}

// ErrorResponse builds the common error envelope
func ErrorResponse(message string) BaseResponse {
	return BaseResponse{Status: StatusError, Message: message}
}

// ChannelsResponse for channel lists
type ChannelsResponse struct {
	BaseResponse
	Channels []models.Channel `json:"channels"`
	Count    int              `json:"count"`
}

// SingleChannelResponse for a single channel
type SingleChannelResponse struct {
	BaseResponse
	Channel *models.Channel `json:"channel"`
}

// VideosResponse for video lists
type VideosResponse struct {
	BaseResponse
	Videos []models.Video `json:"videos"`
	Count  int            `json:"count"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
}

// SingleVideoResponse for a single video
type SingleVideoResponse struct {
	BaseResponse
	Video *models.Video `json:"video"`
}

// DigestsResponse for digest history lists
type DigestsResponse struct {
	BaseResponse
	Digests []models.DigestHistory `json:"digests"`
	Count   int                    `json:"count"`
	Total   int64                  `json:"total"`
	Page    int                    `json:"page"`
}

// SingleDigestResponse for a single digest with its videos
type SingleDigestResponse struct {
	BaseResponse
	Digest *models.DigestHistory `json:"digest"`
	Videos []models.Video        `json:"videos,omitempty"`
}

// JobResponse for a single queued job
type JobResponse struct {
	BaseResponse
	Job *models.Job `json:"job"`
}

// JobsResponse for job lists
type JobsResponse struct {
	BaseResponse
	Jobs  []*models.Job `json:"jobs"`
	Count int           `json:"count"`
}

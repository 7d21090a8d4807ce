package discovery

import (
	"context"
	"time"
)

// VideoMetadata describes a video found on a channel feed
type VideoMetadata struct {
	VideoID         string
	ChannelID       string
	Title           string
	Description     string
	DurationSeconds int
	PublishedAt     time.Time
	ThumbnailURL    string
	IsLive          bool
}

// ChannelMetadata describes a channel looked up on the platform
type ChannelMetadata struct {
	ChannelID    string
	Title        string
	ThumbnailURL string
}

// Source lists new videos for subscribed channels
type Source interface {
	// ListChannelVideos returns videos published on the channel since
	// the given time, newest first
	ListChannelVideos(ctx context.Context, channelID string, publishedAfter time.Time) ([]VideoMetadata, error)

	// LookupChannel resolves a channel's metadata
	LookupChannel(ctx context.Context, channelID string) (*ChannelMetadata, error)
}

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// listPageSize bounds one playlist page; channels rarely publish more
// than this between checks
const listPageSize = 50

// Credentials selects how the Data API client authenticates. When
// TokenPath is set the stored OAuth token takes precedence over the
// API key.
type Credentials struct {
	APIKey    string
	TokenPath string
}

// YouTubeSource discovers videos through the YouTube Data API
type YouTubeSource struct {
	client *youtube.Service
}

// NewYouTubeSource creates a discovery source backed by the Data API
func NewYouTubeSource(ctx context.Context, creds Credentials) (*YouTubeSource, error) {
	opt := option.WithAPIKey(creds.APIKey)
	if creds.TokenPath != "" {
		token, err := loadToken(creds.TokenPath)
		if err != nil {
			return nil, err
		}
		opt = option.WithTokenSource(oauth2.StaticTokenSource(token))
	}

	client, err := youtube.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("creating youtube client: %w", err)
	}
	return &YouTubeSource{client: client}, nil
}

// loadToken reads a stored OAuth token in the JSON format written by
// the oauth2 package
func loadToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading oauth token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("parsing oauth token: %w", err)
	}
	return &token, nil
}

// ListChannelVideos returns the channel's uploads since publishedAfter.
// Live streams and premieres are filtered out; only published videos
// make it into processing.
func (s *YouTubeSource) ListChannelVideos(ctx context.Context, channelID string, publishedAfter time.Time) ([]VideoMetadata, error) {
	uploadsID, err := s.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	items, err := s.client.PlaylistItems.
		List([]string{"contentDetails"}).
		PlaylistId(uploadsID).
		MaxResults(listPageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing uploads for channel %s: %w", channelID, err)
	}

	var ids []string
	for _, item := range items.Items {
		published, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt)
		if err != nil || !published.After(publishedAfter) {
			continue
		}
		ids = append(ids, item.ContentDetails.VideoId)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	details, err := s.client.Videos.
		List([]string{"snippet", "contentDetails", "liveStreamingDetails"}).
		Id(strings.Join(ids, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetching video details: %w", err)
	}

	videos := make([]VideoMetadata, 0, len(details.Items))
	for _, item := range details.Items {
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		duration, err := parseISODuration(item.ContentDetails.Duration)
		if err != nil {
			duration = 0
		}

		isLive := item.Snippet.LiveBroadcastContent != "" && item.Snippet.LiveBroadcastContent != "none"
		if item.LiveStreamingDetails != nil && item.LiveStreamingDetails.ActualEndTime == "" && item.LiveStreamingDetails.ActualStartTime != "" {
			isLive = true
		}

		thumbnail := ""
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			thumbnail = item.Snippet.Thumbnails.High.Url
		}

		videos = append(videos, VideoMetadata{
			VideoID:         item.Id,
			ChannelID:       channelID,
			Title:           item.Snippet.Title,
			Description:     item.Snippet.Description,
			DurationSeconds: duration,
			PublishedAt:     published,
			ThumbnailURL:    thumbnail,
			IsLive:          isLive,
		})
	}
	return videos, nil
}

// LookupChannel resolves a channel's title
func (s *YouTubeSource) LookupChannel(ctx context.Context, channelID string) (*ChannelMetadata, error) {
	resp, err := s.client.Channels.
		List([]string{"snippet"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("looking up channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	meta := &ChannelMetadata{
		ChannelID: channelID,
		Title:     resp.Items[0].Snippet.Title,
	}
	if t := resp.Items[0].Snippet.Thumbnails; t != nil && t.High != nil {
		meta.ThumbnailURL = t.High.Url
	}
	return meta, nil
}

// uploadsPlaylistID resolves the channel's uploads playlist
func (s *YouTubeSource) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	resp, err := s.client.Channels.
		List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("resolving uploads playlist for %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("channel %s not found", channelID)
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

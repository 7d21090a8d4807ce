package transcripts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SupadataClient transcribes video audio through the Supadata API. It is
// the fallback when no caption track is usable.
type SupadataClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	language   string
}

// SupadataConfig holds configuration for the Supadata client
type SupadataConfig struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// NewSupadataClient creates an audio transcription client
func NewSupadataClient(cfg SupadataConfig) *SupadataClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.supadata.ai/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &SupadataClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
	}
}

type supadataResponse struct {
	Content string `json:"content"`
	Lang    string `json:"lang"`
}

// Transcribe returns the transcribed audio text for a video. A 404 from
// the API means transcription is not available for this video.
func (c *SupadataClient) Transcribe(ctx context.Context, videoID string) (string, string, error) {
	params := url.Values{}
	params.Set("videoId", videoID)
	params.Set("text", "true")
	if c.language != "" {
		params.Set("lang", c.language)
	}

	fullURL := fmt.Sprintf("%s/youtube/transcript?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", &ProviderError{Provider: "supadata", Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		return "", "", ErrNoTranscript
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", &ProviderError{
			Provider:   "supadata",
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var result supadataResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("decoding response: %w", err)
	}
	if result.Content == "" {
		return "", "", ErrEmptyTranscript
	}
	return result.Content, result.Lang, nil
}

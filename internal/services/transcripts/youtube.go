package transcripts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// YouTubeCaptionClient fetches caption tracks through a timed-text proxy
// service that exposes YouTube's track catalog over JSON.
type YouTubeCaptionClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// YouTubeCaptionConfig holds configuration for the caption client
type YouTubeCaptionConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewYouTubeCaptionClient creates a caption provider client
func NewYouTubeCaptionClient(cfg YouTubeCaptionConfig) *YouTubeCaptionClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &YouTubeCaptionClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

type captionTrackResponse struct {
	Language     string `json:"language"`
	Kind         string `json:"kind"`
	Translatable bool   `json:"isTranslatable"`
}

type captionListResponse struct {
	Tracks []captionTrackResponse `json:"tracks"`
}

type captionFetchResponse struct {
	Content string `json:"content"`
}

// ListTracks returns the available caption tracks for a video
func (c *YouTubeCaptionClient) ListTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	params := url.Values{}
	params.Set("videoId", videoID)

	var resp captionListResponse
	if err := c.get(ctx, "captions/list", params, &resp); err != nil {
		return nil, err
	}

	tracks := make([]CaptionTrack, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		tracks = append(tracks, CaptionTrack{
			Language:     t.Language,
			IsManual:     t.Kind != "asr",
			Translatable: t.Translatable,
		})
	}
	return tracks, nil
}

// Fetch downloads the caption text for a video in the given language
func (c *YouTubeCaptionClient) Fetch(ctx context.Context, videoID, language string) (string, error) {
	params := url.Values{}
	params.Set("videoId", videoID)
	params.Set("lang", language)

	var resp captionFetchResponse
	if err := c.get(ctx, "captions/fetch", params, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Translate requests a translated rendition of caption text
func (c *YouTubeCaptionClient) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	body := map[string]string{
		"text":       text,
		"targetLang": targetLanguage,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/captions/translate", c.baseURL), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "youtube-captions", Message: "translate request failed", Cause: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", c.statusError(httpResp)
	}

	var resp captionFetchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("decoding translate response: %w", err)
	}
	return resp.Content, nil
}

func (c *YouTubeCaptionClient) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Provider: "youtube-captions", Message: "request failed", Cause: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return ErrNoTracks
	}
	if httpResp.StatusCode != http.StatusOK {
		return c.statusError(httpResp)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *YouTubeCaptionClient) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &ProviderError{
		Provider:   "youtube-captions",
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
}

package generative

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIClient wraps the chat completion API with JSON response mode and
// a client-side rate limiter shared across all callers.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

// Config holds configuration for the OpenAI client
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// RateLimit is requests per minute. Zero disables client-side limiting.
	RateLimit int
}

// NewOpenAIClient creates a generation client
func NewOpenAIClient(cfg Config) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimit)/60.0), 1)
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		limiter: limiter,
	}
}

// GenerateJSON sends the prompt pair and returns the model output.
// Transport and quota failures are wrapped as *GenerationError with the
// retryable flag set.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
		})
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Message: "no choices in response", Retryable: true}
	}

	return resp.Choices[len(resp.Choices)-1].Message.Content, nil
}

// GenerationError describes a failed generation request
type GenerationError struct {
	Message   string
	Retryable bool
	Cause     error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// classifyError maps API failures onto retryable/permanent. Rate limits,
// server errors, and transport failures are retryable; auth and request
// errors are not.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		retryable := apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= 500
		return &GenerationError{
			Message:   fmt.Sprintf("api error (status %d)", apiErr.HTTPStatusCode),
			Retryable: retryable,
			Cause:     err,
		}
	}
	// Anything without an API status is a transport-level failure
	return &GenerationError{Message: "request failed", Retryable: true, Cause: err}
}

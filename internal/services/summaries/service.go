package summaries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/generative"
)

type service struct {
	generator   generative.Generator
	maxChars    int
	maxAttempts int
	retryDelay  time.Duration
}

// Options configures the summarization service
type Options struct {
	// MaxTranscriptChars is the segment size limit. Longer transcripts
	// are split and summarized per segment.
	MaxTranscriptChars int
	// MaxAttempts bounds generation retries per segment
	MaxAttempts int
	// RetryDelay is the base delay; it doubles per attempt
	RetryDelay time.Duration
}

// NewService creates a summarization service
func NewService(generator generative.Generator, opts Options) Service {
	if opts.MaxTranscriptChars <= 0 {
		opts.MaxTranscriptChars = 500000
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &service{
		generator:   generator,
		maxChars:    opts.MaxTranscriptChars,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
	}
}

// Summarize produces a structured summary of the transcript. Oversized
// transcripts are split into segments, summarized independently, and
// merged. Returns *SummarizationError on failure; its Retryable flag
// tells the caller whether a later attempt could succeed.
func (s *service) Summarize(ctx context.Context, title, transcript string) (*models.Summary, error) {
	segments := SplitTranscript(transcript, s.maxChars)
	if len(segments) > 1 {
		log.Printf("[INFO] Transcript of %d chars split into %d segments", len(transcript), len(segments))
	}

	parts := make([]*models.Summary, 0, len(segments))
	for i, segment := range segments {
		summary, err := s.summarizeSegment(ctx, title, segment, i+1, len(segments))
		if err != nil {
			return nil, err
		}
		parts = append(parts, summary)
	}

	return s.synthesize(ctx, title, parts)
}

// summarizeSegment generates a summary for one segment with bounded
// retries. Schema-invalid output and transient upstream failures are
// retried with doubling delays; other failures end the attempt loop
// immediately.
func (s *service) summarizeSegment(ctx context.Context, title, segment string, part, totalParts int) (*models.Summary, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.retryDelay << (attempt - 2)
			log.Printf("[DEBUG] Summarization attempt %d/%d for segment %d/%d after %v: %v",
				attempt, s.maxAttempts, part, totalParts, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, &SummarizationError{Message: "context cancelled", Retryable: true, Cause: ctx.Err()}
			case <-time.After(delay):
			}
		}

		raw, err := s.generator.GenerateJSON(ctx, summarySystemPrompt(), summaryUserPrompt(title, segment, part, totalParts))
		if err != nil {
			var genErr *generative.GenerationError
			if errors.As(err, &genErr) && !genErr.Retryable {
				return nil, &SummarizationError{Message: "generation rejected", Retryable: false, Cause: err}
			}
			lastErr = err
			continue
		}

		summary, err := parseSummary(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return summary, nil
	}

	// Schema violations that survive every attempt are permanent; the
	// same transcript would produce the same malformed output again.
	retryable := true
	var schemaErr *schemaError
	if errors.As(lastErr, &schemaErr) {
		retryable = false
	}
	return nil, &SummarizationError{
		Message:   fmt.Sprintf("exhausted %d attempts for segment %d/%d", s.maxAttempts, part, totalParts),
		Retryable: retryable,
		Cause:     lastErr,
	}
}

type schemaError struct {
	cause error
}

func (e *schemaError) Error() string {
	return fmt.Sprintf("output does not match schema: %v", e.cause)
}

func (e *schemaError) Unwrap() error {
	return e.cause
}

// parseSummary decodes and validates the model output
func parseSummary(raw string) (*models.Summary, error) {
	var summary models.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, &schemaError{cause: err}
	}
	if err := summary.Validate(); err != nil {
		return nil, &schemaError{cause: err}
	}
	return &summary, nil
}

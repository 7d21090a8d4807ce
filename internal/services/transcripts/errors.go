package transcripts

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrNoTranscript means both the primary and the fallback source were
	// exhausted. Terminal for the video apart from bounded scheduled retries.
	ErrNoTranscript = errors.New("no transcript available")

	// ErrEmptyTranscript means a source returned a transcript with no text.
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// ProviderError represents a failure talking to a transcript provider
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Transient reports whether the failure is network-class (timeout, rate
// limit, server error, IP block) rather than a definitive "no captions".
func (e *ProviderError) Transient() bool {
	switch e.StatusCode {
	case 0: // Transport-level failure
		return true
	case 403, 429:
		return true
	}
	return e.StatusCode >= 500
}

// ErrNoTracks means the primary provider listed no caption tracks for
// the video. Not transient; the fallback source is tried next.
var ErrNoTracks = errors.New("no caption tracks available")

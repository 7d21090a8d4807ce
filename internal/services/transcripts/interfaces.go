package transcripts

import (
	"context"

	"github.com/killallgit/digest-api/internal/models"
)

// CaptionTrack describes one caption track offered by the primary provider
type CaptionTrack struct {
	Language     string
	IsManual     bool
	Translatable bool
}

// Transcript is the result of acquisition: the text plus where it came from
type Transcript struct {
	Text     string
	Source   models.TranscriptSource
	Language string
}

// CaptionProvider is the primary transcript source: published caption
// tracks with optional translation.
type CaptionProvider interface {
	ListTracks(ctx context.Context, videoID string) ([]CaptionTrack, error)
	Fetch(ctx context.Context, videoID, language string) (string, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// AudioTranscriber is the fallback source: a transcript derived directly
// from the audio, with no language preference.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, videoID string) (text, language string, err error)
}

// Service resolves a video ID to a usable transcript
type Service interface {
	Resolve(ctx context.Context, videoID string) (*Transcript, error)
}

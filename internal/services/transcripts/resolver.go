package transcripts

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/killallgit/digest-api/internal/models"
)

type service struct {
	primary   CaptionProvider
	fallback  AudioTranscriber
	target    string
	secondary string
}

// NewService creates a transcript resolver with the given source order:
// caption tracks from the primary provider first, audio transcription as
// the fallback. target and secondary are language codes ("de", "en").
func NewService(primary CaptionProvider, fallback AudioTranscriber, target, secondary string) Service {
	return &service{
		primary:   primary,
		fallback:  fallback,
		target:    target,
		secondary: secondary,
	}
}

// Resolve returns a usable transcript for the video or ErrNoTranscript
// when both sources are exhausted. Resolve performs no persistence.
func (s *service) Resolve(ctx context.Context, videoID string) (*Transcript, error) {
	transcript, primaryErr := s.resolvePrimary(ctx, videoID)
	if primaryErr == nil {
		return transcript, nil
	}

	log.Printf("[DEBUG] Primary transcript source failed for %s: %v, trying fallback", videoID, primaryErr)

	if s.fallback != nil {
		text, language, err := s.fallback.Transcribe(ctx, videoID)
		if err == nil {
			text = Sanitize(text)
			if strings.TrimSpace(text) != "" {
				if language == "" {
					language = "unknown"
				}
				return &Transcript{
					Text:     text,
					Source:   models.TranscriptSourceFallback,
					Language: language,
				}, nil
			}
			err = ErrEmptyTranscript
		}
		log.Printf("[DEBUG] Fallback transcript source failed for %s: %v", videoID, err)
	}

	return nil, fmt.Errorf("%w for video %s", ErrNoTranscript, videoID)
}

// candidate pairs a caption track with the decision to translate it
type candidate struct {
	track     CaptionTrack
	translate bool
}

// resolvePrimary walks the language preference tiers over the provider's
// track list and fetches the first candidate that yields text.
func (s *service) resolvePrimary(ctx context.Context, videoID string) (*Transcript, error) {
	tracks, err := s.primary.ListTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}

	var lastErr error = ErrNoTracks
	for _, cand := range s.candidates(tracks) {
		text, err := s.primary.Fetch(ctx, videoID, cand.track.Language)
		if err != nil {
			lastErr = err
			continue
		}

		language := cand.track.Language
		if cand.translate {
			translated, err := s.primary.Translate(ctx, text, s.target)
			if err != nil {
				// Accept the untranslated text rather than losing the track
				log.Printf("[DEBUG] Translation to %s failed for %s: %v", s.target, videoID, err)
			} else {
				text = translated
				language = s.target
			}
		}

		text = Sanitize(text)
		if strings.TrimSpace(text) == "" {
			lastErr = ErrEmptyTranscript
			continue
		}

		return &Transcript{
			Text:     text,
			Source:   models.TranscriptSourcePrimary,
			Language: language,
		}, nil
	}

	return nil, lastErr
}

// candidates orders the tracks by the selection policy. Ties within a
// tier keep the provider-returned order.
//
// Tiers: manual target, manual secondary, other manual (translated when
// possible), auto target, auto secondary (translated), other auto
// (translated when possible).
func (s *service) candidates(tracks []CaptionTrack) []candidate {
	var out []candidate
	seen := make(map[string]bool)

	add := func(track CaptionTrack, translate bool) {
		key := track.Language + ":" + fmt.Sprint(track.IsManual)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, candidate{track: track, translate: translate && track.Translatable})
	}

	// Tier 1: manually-authored track in the target language
	for _, t := range tracks {
		if t.IsManual && matchesLanguage(t.Language, s.target) {
			add(t, false)
		}
	}
	// Tier 2: manually-authored track in the secondary language
	for _, t := range tracks {
		if t.IsManual && matchesLanguage(t.Language, s.secondary) {
			add(t, false)
		}
	}
	// Tier 3: any other manually-authored track, translated
	for _, t := range tracks {
		if t.IsManual {
			add(t, true)
		}
	}
	// Tier 4: auto-generated track in the target language
	for _, t := range tracks {
		if !t.IsManual && matchesLanguage(t.Language, s.target) {
			add(t, false)
		}
	}
	// Tier 5: auto-generated track in the secondary language, translated
	for _, t := range tracks {
		if !t.IsManual && matchesLanguage(t.Language, s.secondary) {
			add(t, true)
		}
	}
	// Tier 6: any auto-generated track, translated
	for _, t := range tracks {
		if !t.IsManual {
			add(t, true)
		}
	}

	return out
}

// matchesLanguage matches exact codes and regional variants, so "en"
// covers "en-US" and "en-GB".
func matchesLanguage(language, code string) bool {
	return language == code || strings.HasPrefix(language, code+"-")
}

package transcripts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/digest-api/internal/models"
)

type fakeCaptionProvider struct {
	tracks       []CaptionTrack
	listErr      error
	texts        map[string]string
	fetchErr     map[string]error
	translated   string
	translateErr error

	fetchedLangs []string
	translations int
}

func (f *fakeCaptionProvider) ListTracks(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	return f.tracks, f.listErr
}

func (f *fakeCaptionProvider) Fetch(ctx context.Context, videoID, language string) (string, error) {
	f.fetchedLangs = append(f.fetchedLangs, language)
	if err, ok := f.fetchErr[language]; ok {
		return "", err
	}
	return f.texts[language], nil
}

func (f *fakeCaptionProvider) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	f.translations++
	if f.translateErr != nil {
		return "", f.translateErr
	}
	return f.translated, nil
}

type fakeTranscriber struct {
	text     string
	language string
	err      error
	calls    int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, videoID string) (string, string, error) {
	f.calls++
	return f.text, f.language, f.err
}

func TestResolve_LanguageSelection(t *testing.T) {
	tests := []struct {
		name         string
		tracks       []CaptionTrack
		wantLanguage string
		wantFetched  string
	}{
		{
			name: "manual target beats manual secondary",
			tracks: []CaptionTrack{
				{Language: "en", IsManual: true},
				{Language: "de", IsManual: true},
			},
			wantLanguage: "de",
			wantFetched:  "de",
		},
		{
			name: "manual secondary beats auto target",
			tracks: []CaptionTrack{
				{Language: "de", IsManual: false},
				{Language: "en", IsManual: true},
			},
			wantLanguage: "en",
			wantFetched:  "en",
		},
		{
			name: "auto target beats auto secondary",
			tracks: []CaptionTrack{
				{Language: "en", IsManual: false},
				{Language: "de", IsManual: false},
			},
			wantLanguage: "de",
			wantFetched:  "de",
		},
		{
			name: "regional variant matches base code",
			tracks: []CaptionTrack{
				{Language: "en-US", IsManual: true},
				{Language: "fr", IsManual: true},
			},
			wantLanguage: "en-US",
			wantFetched:  "en-US",
		},
		{
			name: "provider order breaks ties within a tier",
			tracks: []CaptionTrack{
				{Language: "de-AT", IsManual: true},
				{Language: "de-DE", IsManual: true},
			},
			wantLanguage: "de-AT",
			wantFetched:  "de-AT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeCaptionProvider{
				tracks: tt.tracks,
				texts: map[string]string{
					tt.wantFetched: "hello transcript text",
				},
			}
			svc := NewService(provider, nil, "de", "en")

			transcript, err := svc.Resolve(context.Background(), "vid-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantLanguage, transcript.Language)
			assert.Equal(t, models.TranscriptSourcePrimary, transcript.Source)
			require.NotEmpty(t, provider.fetchedLangs)
			assert.Equal(t, tt.wantFetched, provider.fetchedLangs[0])
		})
	}
}

func TestResolve_TranslatesOtherManualTrack(t *testing.T) {
	provider := &fakeCaptionProvider{
		tracks: []CaptionTrack{
			{Language: "fr", IsManual: true, Translatable: true},
		},
		texts:      map[string]string{"fr": "bonjour le monde"},
		translated: "hallo welt",
	}
	svc := NewService(provider, nil, "de", "en")

	transcript, err := svc.Resolve(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "hallo welt", transcript.Text)
	assert.Equal(t, "de", transcript.Language)
	assert.Equal(t, 1, provider.translations)
}

func TestResolve_TranslationFailureKeepsOriginal(t *testing.T) {
	provider := &fakeCaptionProvider{
		tracks: []CaptionTrack{
			{Language: "fr", IsManual: true, Translatable: true},
		},
		texts:        map[string]string{"fr": "bonjour le monde"},
		translateErr: errors.New("translation unavailable"),
	}
	svc := NewService(provider, nil, "de", "en")

	transcript, err := svc.Resolve(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "bonjour le monde", transcript.Text)
	assert.Equal(t, "fr", transcript.Language)
}

func TestResolve_FallbackOnBlockedProvider(t *testing.T) {
	provider := &fakeCaptionProvider{
		listErr: &ProviderError{Provider: "youtube-captions", StatusCode: 403, Message: "requests from this IP are blocked"},
	}
	transcriber := &fakeTranscriber{text: "spoken words from audio", language: "de"}
	svc := NewService(provider, transcriber, "de", "en")

	transcript, err := svc.Resolve(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptSourceFallback, transcript.Source)
	assert.Equal(t, "spoken words from audio", transcript.Text)
	assert.Equal(t, "de", transcript.Language)
	assert.Equal(t, 1, transcriber.calls)
}

func TestResolve_FallbackWhenNoTracks(t *testing.T) {
	provider := &fakeCaptionProvider{tracks: nil}
	transcriber := &fakeTranscriber{text: "audio text", language: "en"}
	svc := NewService(provider, transcriber, "de", "en")

	transcript, err := svc.Resolve(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, models.TranscriptSourceFallback, transcript.Source)
}

func TestResolve_BothSourcesFail(t *testing.T) {
	provider := &fakeCaptionProvider{tracks: nil}
	transcriber := &fakeTranscriber{err: errors.New("transcription backend down")}
	svc := NewService(provider, transcriber, "de", "en")

	_, err := svc.Resolve(context.Background(), "vid-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestResolve_NoFallbackConfigured(t *testing.T) {
	provider := &fakeCaptionProvider{tracks: nil}
	svc := NewService(provider, nil, "de", "en")

	_, err := svc.Resolve(context.Background(), "vid-1")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestResolve_EmptyTrackTriesNextCandidate(t *testing.T) {
	provider := &fakeCaptionProvider{
		tracks: []CaptionTrack{
			{Language: "de", IsManual: true},
			{Language: "en", IsManual: true},
		},
		texts: map[string]string{
			"de": "[Musik]  ",
			"en": "actual caption content",
		},
	}
	svc := NewService(provider, nil, "de", "en")

	transcript, err := svc.Resolve(context.Background(), "vid-1")
	require.NoError(t, err)
	assert.Equal(t, "en", transcript.Language)
	assert.Equal(t, "actual caption content", transcript.Text)
}

func TestResolve_EmptyFallbackTextFails(t *testing.T) {
	provider := &fakeCaptionProvider{tracks: nil}
	transcriber := &fakeTranscriber{text: "   ", language: "de"}
	svc := NewService(provider, transcriber, "de", "en")

	_, err := svc.Resolve(context.Background(), "vid-1")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

func TestProviderError_Transient(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{403, true},
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{404, false},
	}
	for _, tt := range tests {
		err := &ProviderError{Provider: "test", StatusCode: tt.status}
		assert.Equal(t, tt.want, err.Transient(), "status %d", tt.status)
	}
}

package youtube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/pkg/retry"
	"go.uber.org/zap"
)

const testVideoID = "dQw4w9WgXcQ"

type stubSource struct {
	title        string
	titleErr     error
	tracks       []Track
	listErrs     []error // consumed one per ListTracks call
	listCalls    int
	segments     map[string][]string
	segmentsErr  error
	fetchedTrack Track
}

func (s *stubSource) Title(ctx context.Context, videoID string) (string, error) {
	return s.title, s.titleErr
}

func (s *stubSource) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	s.listCalls++
	if len(s.listErrs) > 0 {
		err := s.listErrs[0]
		s.listErrs = s.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return s.tracks, nil
}

func (s *stubSource) FetchSegments(ctx context.Context, track Track) ([]string, error) {
	s.fetchedTrack = track
	if s.segmentsErr != nil {
		return nil, s.segmentsErr
	}
	return s.segments[track.LanguageCode], nil
}

var fastPolicy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func newTestFetcher(src TrackSource, opts ...FetcherOption) *Fetcher {
	opts = append([]FetcherOption{WithRetryPolicy(fastPolicy)}, opts...)
	return NewFetcher(src, zap.NewNop(), opts...)
}

func TestFetchSelectsPreferredLanguage(t *testing.T) {
	src := &stubSource{
		title: "Some talk",
		tracks: []Track{
			{LanguageCode: "en", Generated: true},
			{LanguageCode: "de"},
		},
		segments: map[string][]string{"de": {"Hallo", "Welt"}, "en": {"Hello", "world"}},
	}

	res := newTestFetcher(src).Fetch(context.Background(), "https://youtu.be/"+testVideoID, "de")

	require.True(t, res.OK())
	assert.Equal(t, testVideoID, res.VideoID)
	assert.Equal(t, "Hallo\nWelt", res.Text)
	assert.Equal(t, "de", res.SelectedLanguage)
	assert.Equal(t, "Some talk", res.Title)
	assert.Equal(t, []string{"en", "de"}, res.AvailableLanguages)
	assert.NoError(t, res.Err())
}

func TestFetchTitleScriptDecidesLanguage(t *testing.T) {
	src := &stubSource{
		title:    "Обзор нового телефона",
		tracks:   []Track{{LanguageCode: "en"}, {LanguageCode: "ru", Generated: true}},
		segments: map[string][]string{"ru": {"привет"}, "en": {"hello"}},
	}

	res := newTestFetcher(src).Fetch(context.Background(), testVideoID, "")

	require.True(t, res.OK())
	assert.Equal(t, "ru", res.SelectedLanguage)
	assert.Equal(t, "привет", res.Text)
}

func TestFetchPrefersManualTrack(t *testing.T) {
	src := &stubSource{
		tracks: []Track{
			{LanguageCode: "en", Generated: true, BaseURL: "asr"},
			{LanguageCode: "en-GB", BaseURL: "manual"},
		},
		segments: map[string][]string{"en-GB": {"manual"}},
	}

	res := newTestFetcher(src).Fetch(context.Background(), testVideoID, "")

	require.True(t, res.OK())
	assert.Equal(t, "manual", src.fetchedTrack.BaseURL)
	assert.Equal(t, "en", res.SelectedLanguage)
}

func TestFetchInvalidIdentifier(t *testing.T) {
	src := &stubSource{}
	res := newTestFetcher(src).Fetch(context.Background(), "https://example.com/video", "")

	assert.Equal(t, entity.StatusInvalidIdentifier, res.Status)
	assert.ErrorIs(t, res.Err(), entity.ErrInvalidIdentifier)
	assert.Zero(t, src.listCalls)
}

func TestFetchDisabledIsNotRetried(t *testing.T) {
	src := &stubSource{title: "t", listErrs: []error{ErrTranscriptsDisabled}}

	res := newTestFetcher(src).Fetch(context.Background(), testVideoID, "")

	assert.Equal(t, entity.StatusDisabled, res.Status)
	assert.Equal(t, entity.TextDisabled, res.Text)
	assert.Equal(t, 1, src.listCalls)
	assert.ErrorIs(t, res.Err(), entity.ErrTranscriptUnavailable)
}

func TestFetchRetriesExhausted(t *testing.T) {
	boom := errors.New("connection reset")
	src := &stubSource{title: "Kept title", listErrs: []error{boom, boom, boom, boom}}

	res := newTestFetcher(src).Fetch(context.Background(), testVideoID, "")

	assert.Equal(t, entity.StatusFetchFailed, res.Status)
	assert.Equal(t, entity.TextFetchFailed, res.Text)
	assert.Equal(t, "Kept title", res.Title)
	assert.Empty(t, res.AvailableLanguages)
	assert.Equal(t, 3, src.listCalls)
	assert.ErrorIs(t, res.Err(), entity.ErrFetchRetriesExhausted)
}

func TestFetchRetrySchedule(t *testing.T) {
	boom := errors.New("503")
	src := &stubSource{
		listErrs: []error{boom, boom},
		tracks:   []Track{{LanguageCode: "en"}},
		segments: map[string][]string{"en": {"ok"}},
	}
	policy := retry.Policy{MaxAttempts: 3, BaseDelay: 20 * time.Millisecond}

	start := time.Now()
	res := newTestFetcher(src, WithRetryPolicy(policy)).Fetch(context.Background(), testVideoID, "")
	elapsed := time.Since(start)

	require.True(t, res.OK())
	assert.Equal(t, 3, src.listCalls)
	// 20ms + 40ms of backoff before the third attempt
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestFetchNoTrackReportsAvailable(t *testing.T) {
	src := &stubSource{tracks: []Track{{LanguageCode: "fr"}, {LanguageCode: "es"}}}

	res := newTestFetcher(src).Fetch(context.Background(), testVideoID, "de")

	assert.Equal(t, entity.StatusNoTrack, res.Status)
	assert.Equal(t, []string{"fr", "es"}, res.AvailableLanguages)
	assert.Equal(t, "No transcript found for languages 'de, en, ru'.", res.Text)
	assert.ErrorIs(t, res.Err(), entity.ErrTranscriptUnavailable)
}

func TestFetchSegmentFailureFailsFast(t *testing.T) {
	src := &stubSource{tracks: []Track{{LanguageCode: "en"}}, segmentsErr: errors.New("timeout")}

	res := newTestFetcher(src).Fetch(context.Background(), testVideoID, "")

	assert.Equal(t, entity.StatusFetchFailed, res.Status)
	assert.Equal(t, []string{"en"}, res.AvailableLanguages)
	assert.Equal(t, 1, src.listCalls)
}

func TestFetchTitleFailureIsNotFatal(t *testing.T) {
	src := &stubSource{
		titleErr: errors.New("oembed 401"),
		tracks:   []Track{{LanguageCode: "en"}},
		segments: map[string][]string{"en": {"a", "b"}},
	}

	res := newTestFetcher(src).Fetch(context.Background(), testVideoID, "")

	require.True(t, res.OK())
	assert.Empty(t, res.Title)
	assert.Equal(t, "a\nb", res.Text)
}

func TestFetchUsesCache(t *testing.T) {
	src := &stubSource{tracks: []Track{{LanguageCode: "en"}}, segments: map[string][]string{"en": {"cached"}}}
	f := newTestFetcher(src, WithCache(NewCache(time.Minute, "", zap.NewNop())))

	first := f.Fetch(context.Background(), testVideoID, "")
	second := f.Fetch(context.Background(), "https://www.youtube.com/watch?v="+testVideoID, "")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.listCalls)
}

func TestLanguageOrder(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		title     string
		want      []string
	}{
		{"defaults only", "", "Hello", []string{"en", "ru"}},
		{"preferred first", "DE", "Hello", []string{"de", "en", "ru"}},
		{"script detected", "", "日本語のタイトル", []string{"ja", "en", "ru"}},
		{"deduplicated", "ru", "Привет мир", []string{"ru", "en"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageOrder(tt.preferred, tt.title, DefaultLanguages))
		})
	}
}

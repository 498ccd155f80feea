package youtube

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/language"
	"github.com/yourusername/context-ai-bot/internal/pkg/retry"
	"go.uber.org/zap"
)

// DefaultLanguages is tried after the caller's and the title's language.
var DefaultLanguages = []string{"en", "ru"}

// TrackSource is the network side of the fetcher, implemented by Client.
type TrackSource interface {
	Title(ctx context.Context, videoID string) (string, error)
	ListTracks(ctx context.Context, videoID string) ([]Track, error)
	FetchSegments(ctx context.Context, track Track) ([]string, error)
}

// Fetcher implements repository.TranscriptFetcher.
type Fetcher struct {
	src      TrackSource
	policy   retry.Policy
	defaults []string
	cache    *Cache
	logger   *zap.Logger
}

var _ repository.TranscriptFetcher = (*Fetcher)(nil)

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRetryPolicy overrides the listing retry policy.
func WithRetryPolicy(p retry.Policy) FetcherOption {
	return func(f *Fetcher) { f.policy = p }
}

// WithCache enables result caching.
func WithCache(c *Cache) FetcherOption {
	return func(f *Fetcher) { f.cache = c }
}

// WithDefaultLanguages overrides DefaultLanguages.
func WithDefaultLanguages(langs ...string) FetcherOption {
	return func(f *Fetcher) { f.defaults = langs }
}

// NewFetcher returns a Fetcher reading from src.
func NewFetcher(src TrackSource, logger *zap.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		src:      src,
		policy:   retry.DefaultPolicy,
		defaults: DefaultLanguages,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch resolves identifier and returns the transcript in the best language.
// Failures are reported through the result status, never as a panic or error.
func (f *Fetcher) Fetch(ctx context.Context, identifier, preferredLanguage string) entity.TranscriptResult {
	videoID, err := ParseVideoID(identifier)
	if err != nil {
		return entity.TranscriptResult{Status: entity.StatusInvalidIdentifier, Text: entity.TextInvalidIdentifier}
	}

	key := cacheKey(videoID, preferredLanguage)
	if f.cache != nil {
		if res, ok := f.cache.Get(ctx, key); ok {
			return res
		}
	}

	res := f.fetch(ctx, videoID, preferredLanguage)
	if res.OK() && f.cache != nil {
		f.cache.Set(ctx, key, res)
	}
	return res
}

func (f *Fetcher) fetch(ctx context.Context, videoID, preferredLanguage string) entity.TranscriptResult {
	log := f.logger.With(zap.String("video_id", videoID))
	res := entity.TranscriptResult{VideoID: videoID}

	title, err := f.src.Title(ctx, videoID)
	if err != nil {
		log.Debug("title lookup failed", zap.Error(err))
	}
	res.Title = title

	order := LanguageOrder(preferredLanguage, title, f.defaults)

	tracks, err := retry.Do(ctx, f.policy, func() ([]Track, error) {
		tracks, err := f.src.ListTracks(ctx, videoID)
		if errors.Is(err, ErrTranscriptsDisabled) || errors.Is(err, ErrVideoUnavailable) {
			return nil, retry.Permanent(err)
		}
		return tracks, err
	}, retry.WithNotify(func(attempt int, err error, wait time.Duration) {
		log.Warn("listing transcripts failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))
	}))
	if err != nil {
		if errors.Is(err, ErrTranscriptsDisabled) {
			res.Status = entity.StatusDisabled
			res.Text = entity.TextDisabled
			return res
		}
		log.Warn("listing transcripts gave up", zap.Error(err))
		res.Status = entity.StatusFetchFailed
		res.Text = entity.TextFetchFailed
		return res
	}

	res.AvailableLanguages = availableLanguages(tracks)
	track, ok := SelectTrack(tracks, order)
	if !ok {
		res.Status = entity.StatusNoTrack
		res.Text = entity.NoTrackText(order)
		return res
	}

	segments, err := f.src.FetchSegments(ctx, track)
	if err != nil {
		log.Warn("downloading transcript failed", zap.String("lang", track.LanguageCode), zap.Error(err))
		res.Status = entity.StatusFetchFailed
		res.Text = entity.TextFetchFailed
		return res
	}

	res.Status = entity.StatusOK
	res.Text = strings.Join(segments, "\n")
	res.SelectedLanguage = baseCode(track.LanguageCode)
	log.Info("transcript fetched",
		zap.String("lang", res.SelectedLanguage), zap.Bool("generated", track.Generated), zap.Int("segments", len(segments)))
	return res
}

// LanguageOrder preferred language first, then the language implied by the
// title's script, then defaults. Duplicates are dropped.
func LanguageOrder(preferred, title string, defaults []string) []string {
	seen := make(map[string]bool)
	var order []string
	add := func(code string) {
		code = strings.ToLower(strings.TrimSpace(code))
		if code != "" && !seen[code] {
			seen[code] = true
			order = append(order, code)
		}
	}

	add(preferred)
	if code, ok := language.DetectScript(title); ok {
		add(code)
	}
	for _, code := range defaults {
		add(code)
	}
	return order
}

// SelectTrack picks the first language of order that has a track, preferring
// a manual track over an auto-generated one for the same language.
func SelectTrack(tracks []Track, order []string) (Track, bool) {
	for _, lang := range order {
		var generated *Track
		for i := range tracks {
			if !languageMatches(tracks[i].LanguageCode, lang) {
				continue
			}
			if !tracks[i].Generated {
				return tracks[i], true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return Track{}, false
}

func availableLanguages(tracks []Track) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tracks {
		if !seen[t.LanguageCode] {
			seen[t.LanguageCode] = true
			out = append(out, t.LanguageCode)
		}
	}
	return out
}

// languageMatches compares "en-US" style track codes against a base code.
func languageMatches(trackCode, want string) bool {
	return strings.EqualFold(trackCode, want) || strings.EqualFold(baseCode(trackCode), want)
}

func baseCode(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}

package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrTranscriptsDisabled the video plays but publishes no caption tracks
	ErrTranscriptsDisabled = errors.New("transcripts are disabled")
	// ErrVideoUnavailable the player refused the video (private, removed, age gate)
	ErrVideoUnavailable = errors.New("video unavailable")
)

const (
	defaultBaseURL  = "https://www.youtube.com"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	playerMarker    = "ytInitialPlayerResponse = "
	maxWatchPage    = 6 << 20
	maxTimedText    = 2 << 20
	maxOEmbedLength = 64 << 10
)

// Track one language-specific transcript option of a video
type Track struct {
	LanguageCode string
	Name         string
	Generated    bool
	BaseURL      string
}

// StatusError non-2xx reply from the platform
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	VideoDetails struct {
		Title string `json:"title"`
	} `json:"videoDetails"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
	Name         struct {
		SimpleText string `json:"simpleText"`
		Runs       []struct {
			Text string `json:"text"`
		} `json:"runs"`
	} `json:"name"`
}

func (t captionTrack) displayName() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Name.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Client talks to the public watch page, oEmbed and timedtext endpoints.
// It needs no credentials.
type Client struct {
	http    *http.Client
	baseURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another host, used by tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a Client with a 20s request timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 20 * time.Second},
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Title fetches the video title through oEmbed.
func (c *Client) Title(ctx context.Context, videoID string) (string, error) {
	endpoint := c.baseURL + "/oembed?format=json&url=" + url.QueryEscape(WatchURL(videoID))
	body, err := c.get(ctx, endpoint, maxOEmbedLength)
	if err != nil {
		return "", err
	}

	var meta struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("decode oembed: %w", err)
	}
	return strings.TrimSpace(meta.Title), nil
}

// ListTracks scrapes the watch page player response for caption tracks,
// manual and auto-generated alike.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	body, err := c.get(ctx, c.baseURL+"/watch?v="+url.QueryEscape(videoID), maxWatchPage)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), playerMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	raw := extractJSON(body[idx+len(playerMarker):])
	if raw == nil {
		return nil, errors.New("malformed ytInitialPlayerResponse")
	}

	var pr playerResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}

	if status := pr.PlayabilityStatus.Status; status != "" && status != "OK" {
		return nil, fmt.Errorf("%w: %s %s", ErrVideoUnavailable, status, pr.PlayabilityStatus.Reason)
	}
	if pr.Captions == nil || len(pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}

	raws := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]Track, 0, len(raws))
	for _, t := range raws {
		tracks = append(tracks, Track{
			LanguageCode: t.LanguageCode,
			Name:         t.displayName(),
			Generated:    t.Kind == "asr",
			BaseURL:      t.BaseURL,
		})
	}
	return tracks, nil
}

// FetchSegments downloads a track and returns its segments in order.
func (c *Client) FetchSegments(ctx context.Context, track Track) ([]string, error) {
	// srv3 has a different layout, ask for the classic one
	endpoint := strings.Replace(track.BaseURL, "&fmt=srv3", "", 1)
	body, err := c.get(ctx, endpoint, maxTimedText)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}

	segments := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text != "" {
			segments = append(segments, text)
		}
	}
	return segments, nil
}

func (c *Client) get(ctx context.Context, endpoint string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// extractJSON returns the leading balanced JSON object of b.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, ch := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

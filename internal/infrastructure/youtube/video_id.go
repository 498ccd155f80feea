package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/yourusername/context-ai-bot/internal/domain/entity"
)

var videoIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// path prefixes followed directly by the id
var idPathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/", "/e/"}

// IsVideoID reports whether s is a bare 11-character video id.
func IsVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}

// IsYouTubeHost reports whether host belongs to the video platform.
func IsYouTubeHost(host string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	switch host {
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be",
		"youtube-nocookie.com":
		return true
	}
	return strings.HasSuffix(host, ".youtube.com")
}

// IsYouTubeURL reports whether s looks like a link to the video platform.
func IsYouTubeURL(s string) bool {
	u, err := parseLooseURL(s)
	return err == nil && IsYouTubeHost(u.Hostname())
}

// ParseVideoID extracts the video id from a bare id or any supported link form:
// watch?v=, youtu.be/, /shorts/, /embed/, /live/, /v/.
func ParseVideoID(identifier string) (string, error) {
	s := strings.TrimSpace(identifier)
	if IsVideoID(s) {
		return s, nil
	}

	u, err := parseLooseURL(s)
	if err != nil || !IsYouTubeHost(u.Hostname()) {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidIdentifier, identifier)
	}

	var candidate string
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	switch {
	case host == "youtu.be":
		candidate = firstSegment(strings.TrimPrefix(u.Path, "/"))
	case u.Path == "/watch" || u.Path == "/watch/":
		candidate = u.Query().Get("v")
	default:
		for _, prefix := range idPathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				candidate = firstSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	}

	if !IsVideoID(candidate) {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidIdentifier, identifier)
	}
	return candidate, nil
}

// WatchURL canonical link for a video id
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

func parseLooseURL(s string) (*url.URL, error) {
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return nil, fmt.Errorf("not a url: %q", s)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url without host: %q", s)
	}
	return u, nil
}

package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playerJSON = `{"playabilityStatus":{"status":"OK"},` +
	`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
	`{"baseUrl":"%[1]s/api/timedtext?v=abc&lang=en&fmt=srv3","languageCode":"en","kind":"asr","name":{"simpleText":"English (auto-generated)"}},` +
	`{"baseUrl":"%[1]s/api/timedtext?v=abc&lang=ru","languageCode":"ru","name":{"runs":[{"text":"Russian"}]}}` +
	`]}},"videoDetails":{"title":"A title with } brace"}}`

const timedTextXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0" dur="1.5">Hello &amp;amp; welcome</text>` +
	`<text start="1.5" dur="2">it&amp;#39;s a test</text>` +
	`<text start="3.5" dur="1">  </text>` +
	`</transcript>`

func newTestServer(t *testing.T, watchBody string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			fmt.Fprintf(w, watchBody, srv.URL)
		case "/api/timedtext":
			assert.Empty(t, r.URL.Query().Get("fmt"))
			fmt.Fprint(w, timedTextXML)
		case "/oembed":
			assert.Equal(t, "https://www.youtube.com/watch?v="+testVideoID, r.URL.Query().Get("url"))
			fmt.Fprint(w, `{"title":"  Never Gonna Give You Up  ","author_name":"x"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientListTracksAndSegments(t *testing.T) {
	page := `<html><script>var ytInitialPlayerResponse = ` + playerJSON + `;var meta = {};</script></html>`
	srv := newTestServer(t, page)
	c := NewClient(WithBaseURL(srv.URL))

	tracks, err := c.ListTracks(context.Background(), testVideoID)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "en", tracks[0].LanguageCode)
	assert.True(t, tracks[0].Generated)
	assert.Equal(t, "English (auto-generated)", tracks[0].Name)
	assert.Equal(t, "ru", tracks[1].LanguageCode)
	assert.False(t, tracks[1].Generated)
	assert.Equal(t, "Russian", tracks[1].Name)

	segments, err := c.FetchSegments(context.Background(), tracks[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello & welcome", "it's a test"}, segments)
}

func TestClientTitle(t *testing.T) {
	srv := newTestServer(t, "")
	c := NewClient(WithBaseURL(srv.URL))

	title, err := c.Title(context.Background(), testVideoID)
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", title)
}

func TestClientListTracksErrors(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		wantErr error
	}{
		{
			name:    "no captions",
			page:    `ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"}};`,
			wantErr: ErrTranscriptsDisabled,
		},
		{
			name:    "unplayable",
			page:    `ytInitialPlayerResponse = {"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}};`,
			wantErr: ErrVideoUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.page)
			_, err := NewClient(WithBaseURL(srv.URL)).ListTracks(context.Background(), testVideoID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing marker", func(t *testing.T) {
		srv := newTestServer(t, "<html>consent page</html>")
		_, err := NewClient(WithBaseURL(srv.URL)).ListTracks(context.Background(), testVideoID)
		assert.Error(t, err)
	})
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).ListTracks(context.Background(), testVideoID)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":"}\"{","b":{"c":1}}`, string(extractJSON([]byte(`{"a":"}\"{","b":{"c":1}};rest`))))
	assert.Nil(t, extractJSON([]byte(`{"a":1`)))
	assert.Nil(t, extractJSON([]byte(`x{}`)))
}

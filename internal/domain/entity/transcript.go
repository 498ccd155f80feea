package entity

import (
	"fmt"
	"strings"
)

// TranscriptStatus tagged outcome of a transcript fetch
type TranscriptStatus int

const (
	StatusOK TranscriptStatus = iota
	StatusInvalidIdentifier
	StatusDisabled
	StatusNoTrack
	StatusFetchFailed
)

func (s TranscriptStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidIdentifier:
		return "invalid_identifier"
	case StatusDisabled:
		return "disabled"
	case StatusNoTrack:
		return "no_track"
	case StatusFetchFailed:
		return "fetch_failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Human-readable texts carried by non-OK results.
const (
	TextInvalidIdentifier = "Could not recognize a YouTube video id or link."
	TextDisabled          = "Transcripts are disabled for this video."
	TextFetchFailed       = "Could not retrieve transcript due to network or other error."
)

// NoTrackText describes a failed language match.
func NoTrackText(languages []string) string {
	return fmt.Sprintf("No transcript found for languages '%s'.", strings.Join(languages, ", "))
}

// TranscriptResult result of one fetch. Never persisted.
type TranscriptResult struct {
	VideoID            string
	Text               string
	Title              string
	AvailableLanguages []string
	SelectedLanguage   string
	Status             TranscriptStatus
}

// OK reports whether a transcript was selected.
func (r TranscriptResult) OK() bool {
	return r.Status == StatusOK
}

// Err maps the status to its sentinel error, nil for StatusOK.
func (r TranscriptResult) Err() error {
	switch r.Status {
	case StatusOK:
		return nil
	case StatusInvalidIdentifier:
		return ErrInvalidIdentifier
	case StatusDisabled, StatusNoTrack:
		return fmt.Errorf("%w: %s", ErrTranscriptUnavailable, r.Text)
	default:
		return ErrFetchRetriesExhausted
	}
}

package entity

import "errors"

var (
	ErrInvalidIdentifier     = errors.New("invalid video identifier")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrFetchRetriesExhausted = errors.New("fetch retries exhausted")
	ErrUnsupportedSource     = errors.New("unsupported source")
	ErrNoContextAvailable    = errors.New("no context available")
	ErrProviderUnavailable   = errors.New("provider unavailable")
	ErrInvalidModelName      = errors.New("invalid model name")
)

package repository

import (
	"context"

	"github.com/yourusername/context-ai-bot/internal/domain/entity"
)

// TranscriptFetcher resolves a video reference into a transcript.
// Expected failures are reported through TranscriptResult.Status.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, identifier, preferredLanguage string) entity.TranscriptResult
}

// ContentExtractor turns a web page URL or document path into plain text
type ContentExtractor interface {
	Extract(ctx context.Context, source string) (string, error)
}

// PageRenderer returns the HTML of a page after scripts ran
type PageRenderer interface {
	Render(ctx context.Context, url string) (string, error)
}

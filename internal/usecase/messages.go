package usecase

import (
	"errors"
	"strings"

	"github.com/yourusername/context-ai-bot/internal/domain/entity"
)

// UserMessage turns a pipeline error into the reply shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, entity.ErrInvalidIdentifier):
		return "Invalid YouTube URL or ID. Please try again."
	case errors.Is(err, entity.ErrTranscriptUnavailable):
		return strings.TrimPrefix(err.Error(), entity.ErrTranscriptUnavailable.Error()+": ")
	case errors.Is(err, entity.ErrFetchRetriesExhausted):
		return entity.TextFetchFailed + " Please try again later."
	case errors.Is(err, entity.ErrUnsupportedSource):
		return "This source is not supported. Send a web page link or a PDF, XLSX or TXT document."
	case errors.Is(err, entity.ErrNoContextAvailable):
		return "There is no context yet. Load one first with /ts <youtube link>, /web <url> or by sending a document."
	case errors.Is(err, entity.ErrInvalidModelName):
		return "Unknown model. Use /model remote or /model local."
	case errors.Is(err, entity.ErrProviderUnavailable):
		return "❌ Request failed: " + strings.TrimPrefix(err.Error(), entity.ErrProviderUnavailable.Error()+": ")
	default:
		return "Something went wrong. Please try again later."
	}
}

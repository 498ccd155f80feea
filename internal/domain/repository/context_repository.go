package repository

import (
	"context"

	"github.com/yourusername/context-ai-bot/internal/domain/entity"
)

// ContextStore per-user context and message log persistence
type ContextStore interface {
	// Get returns the stored context, or nil when the user has none.
	Get(ctx context.Context, userID int64) (*entity.UserContext, error)

	// Save merges update into the stored context, creating it if needed.
	Save(ctx context.Context, userID int64, update entity.ContextUpdate) error

	// AppendMessage adds an entry to the user's message log.
	AppendMessage(ctx context.Context, userID int64, text string, origin entity.Origin) error

	// RecentMessages returns up to limit newest entries in chronological order.
	// An empty originFilter matches every origin.
	RecentMessages(ctx context.Context, userID int64, limit int, originFilter entity.Origin) ([]entity.MessageLogEntry, error)

	Close() error
}

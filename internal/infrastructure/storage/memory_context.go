package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
)

type memoryContextStore struct {
	mu         sync.RWMutex
	contexts   map[int64]entity.UserContext
	messages   map[int64][]entity.MessageLogEntry
	maxHistory int
}

// NewMemoryContextStore in-memory ContextStore
func NewMemoryContextStore(maxHistory int) repository.ContextStore {
	return &memoryContextStore{
		contexts:   make(map[int64]entity.UserContext),
		messages:   make(map[int64][]entity.MessageLogEntry),
		maxHistory: maxHistory,
	}
}

func (m *memoryContextStore) Get(ctx context.Context, userID int64) (*entity.UserContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uc, ok := m.contexts[userID]
	if !ok {
		return nil, nil
	}
	return &uc, nil
}

func (m *memoryContextStore) Save(ctx context.Context, userID int64, update entity.ContextUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	uc, ok := m.contexts[userID]
	if !ok {
		uc = entity.UserContext{UserID: userID}
	}
	update.Apply(&uc)
	uc.UpdatedAt = time.Now()
	m.contexts[userID] = uc
	return nil
}

func (m *memoryContextStore) AppendMessage(ctx context.Context, userID int64, text string, origin entity.Origin) error {
	if !origin.Valid() {
		return fmt.Errorf("unknown message origin %q", origin)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := append(m.messages[userID], entity.MessageLogEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		Origin:    origin,
		Timestamp: time.Now(),
	})
	if m.maxHistory > 0 && len(msgs) > m.maxHistory {
		msgs = msgs[len(msgs)-m.maxHistory:]
	}
	m.messages[userID] = msgs
	return nil
}

func (m *memoryContextStore) RecentMessages(ctx context.Context, userID int64, limit int, originFilter entity.Origin) ([]entity.MessageLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []entity.MessageLogEntry
	for _, msg := range m.messages[userID] {
		if originFilter == "" || msg.Origin == originFilter {
			out = append(out, msg)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memoryContextStore) Close() error { return nil }

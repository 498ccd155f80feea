package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
	"go.uber.org/zap"
)

// ResponseBackend routes prompts to the selected provider.
type ResponseBackend struct {
	providers map[entity.ModelName]repository.Provider
	logger    *zap.Logger
}

// NewResponseBackend nil providers are treated as not configured
func NewResponseBackend(providers map[entity.ModelName]repository.Provider, logger *zap.Logger) *ResponseBackend {
	registered := make(map[entity.ModelName]repository.Provider, len(providers))
	for name, p := range providers {
		if p != nil {
			registered[name] = p
		}
	}
	return &ResponseBackend{providers: registered, logger: logger}
}

// Dispatch sends prompt to the provider named by selection.
// Every failure wraps entity.ErrProviderUnavailable.
func (b *ResponseBackend) Dispatch(ctx context.Context, selection entity.ModelName, prompt string) (string, error) {
	provider, ok := b.providers[selection]
	if !ok {
		return "", fmt.Errorf("%w: %s model is not configured", entity.ErrProviderUnavailable, selection)
	}

	b.logger.Debug("dispatching prompt",
		zap.String("provider", provider.Name()),
		zap.Int("prompt_len", len(prompt)))

	text, err := provider.Generate(ctx, prompt)
	if err != nil {
		b.logger.Warn("provider failed", zap.String("provider", provider.Name()), zap.Error(err))
		return "", fmt.Errorf("%w: %w", entity.ErrProviderUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s returned an empty response", entity.ErrProviderUnavailable, provider.Name())
	}
	return text, nil
}

// Has reports whether a provider is registered under name.
func (b *ResponseBackend) Has(name entity.ModelName) bool {
	_, ok := b.providers[name]
	return ok
}

// ModelSelector current model choice, replaced atomically
type ModelSelector struct {
	current atomic.Value // entity.ModelName
}

// NewModelSelector returns a selector set to initial
func NewModelSelector(initial entity.ModelName) *ModelSelector {
	s := &ModelSelector{}
	s.current.Store(initial)
	return s
}

// Select replaces the selection. An unknown name leaves it unchanged.
func (s *ModelSelector) Select(name string) (entity.ModelName, error) {
	model, err := entity.ParseModelName(name)
	if err != nil {
		return s.Current(), err
	}
	s.current.Store(model)
	return model, nil
}

// Current returns the active model
func (s *ModelSelector) Current() entity.ModelName {
	return s.current.Load().(entity.ModelName)
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

type geminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	sem       chan struct{}
	mu        sync.Mutex
	last      time.Time
	delay     time.Duration
}

// NewGeminiClient remote Provider backed by the Gemini API
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (repository.Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)
	model.SetTopP(0.9)
	model.SetMaxOutputTokens(4096)

	return &geminiClient{
		client:    client,
		model:     model,
		modelName: modelName,
		sem:       make(chan struct{}, 3), // at most 3 requests in flight
		delay:     350 * time.Millisecond, // minimal spacing between requests
	}, nil
}

func (g *geminiClient) Name() string {
	return "gemini:" + g.modelName
}

// Generate sends the prompt as a single text part
func (g *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates")
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

// extractText concatenates the text parts of every candidate
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				result.WriteString(string(t))
			}
		}
	}
	return result.String()
}

func (g *geminiClient) acquire(ctx context.Context) (func(), error) {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if !g.last.IsZero() {
		if sleep := g.delay - now.Sub(g.last); sleep > 0 {
			time.Sleep(sleep)
			now = time.Now()
		}
	}
	g.last = now

	return func() {
		<-g.sem
	}, nil
}

// Close closes the underlying client
func (g *geminiClient) Close() error {
	return g.client.Close()
}

package parser

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/yourusername/context-ai-bot/internal/domain/repository"
)

type textParser struct{}

// NewTextParser DocumentParser for plain-text and markdown files
func NewTextParser() repository.DocumentParser {
	return &textParser{}
}

func (p *textParser) Extensions() []string {
	return []string{".txt", ".md"}
}

func (p *textParser) ParseFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8 text", path)
	}
	return string(data), nil
}

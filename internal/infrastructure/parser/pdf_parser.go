package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
)

type pdfParser struct{}

// NewPDFParser DocumentParser concatenating page text in page order
func NewPDFParser() repository.DocumentParser {
	return &pdfParser{}
}

func (p *pdfParser) Extensions() []string {
	return []string{".pdf"}
}

func (p *pdfParser) ParseFile(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

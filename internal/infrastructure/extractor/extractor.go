// Package extractor turns web pages and local documents into plain text.
package extractor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/youtube"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// nodes that never carry visible text
const invisibleSelector = "script, style, noscript, template, svg, iframe"

// Extractor implements repository.ContentExtractor.
type Extractor struct {
	renderer repository.PageRenderer
	parsers  map[string]repository.DocumentParser
	logger   *zap.Logger
}

var _ repository.ContentExtractor = (*Extractor)(nil)

// New returns an Extractor rendering pages with renderer and reading
// documents with parsers, keyed by their extensions.
func New(renderer repository.PageRenderer, logger *zap.Logger, parsers ...repository.DocumentParser) *Extractor {
	e := &Extractor{
		renderer: renderer,
		parsers:  make(map[string]repository.DocumentParser),
		logger:   logger,
	}
	for _, p := range parsers {
		for _, ext := range p.Extensions() {
			e.parsers[strings.ToLower(ext)] = p
		}
	}
	return e
}

// IsWebURL reports whether source is an http(s) link outside the video platform.
func IsWebURL(source string) bool {
	u, err := url.Parse(strings.TrimSpace(source))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !youtube.IsYouTubeHost(u.Hostname())
}

// Supports reports whether source would be accepted by Extract.
func (e *Extractor) Supports(source string) bool {
	if IsWebURL(source) {
		return e.renderer != nil
	}
	_, ok := e.parsers[strings.ToLower(filepath.Ext(source))]
	return ok
}

// Extract returns the visible text of a page or the text of a document.
func (e *Extractor) Extract(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)

	if IsWebURL(source) {
		if e.renderer == nil {
			return "", fmt.Errorf("%w: page rendering is not configured", entity.ErrUnsupportedSource)
		}
		page, err := e.renderer.Render(ctx, source)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", source, err)
		}
		return VisibleText(page)
	}

	parser, ok := e.parsers[strings.ToLower(filepath.Ext(source))]
	if !ok {
		return "", fmt.Errorf("%w: must be a web page URL or a supported document, got %q", entity.ErrUnsupportedSource, source)
	}
	if _, err := os.Stat(source); err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrUnsupportedSource, err)
	}

	text, err := parser.ParseFile(ctx, source)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", filepath.Base(source), err)
	}
	e.logger.Debug("document extracted", zap.String("file", filepath.Base(source)), zap.Int("chars", len(text)))
	return text, nil
}

// VisibleText strips invisible nodes and joins the remaining text with single spaces.
func VisibleText(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(invisibleSelector).Remove()

	var parts []string
	collectText(doc.Find("body"), &parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}

// collectText walks nodes so adjacent block elements do not glue words together.
func collectText(s *goquery.Selection, parts *[]string) {
	s.Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if node == nil {
			return
		}
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				*parts = append(*parts, t)
			}
			return
		}
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			collectText(child, parts)
		})
	})
}

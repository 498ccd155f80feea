package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/language"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/sanitizer"
	"go.uber.org/zap"
)

// PipelineConfig tunables of the pipeline
type PipelineConfig struct {
	DefaultLanguage  string
	MaxContextTokens int
	HistoryWindow    int
	AnswerTimeout    time.Duration
}

// IngestReport what was stored by an ingestion
type IngestReport struct {
	Title         string
	Language      string
	Appended      bool
	Characters    int
	TokenCount    int
	ExceedsBudget bool
}

// ContextSummary describes the stored context of a user
type ContextSummary struct {
	Title           string
	Language        string
	ContinueContext bool
	Text            string
	TokenCount      int
	ExceedsBudget   bool
}

// ContextPipeline ingestion and query orchestration
type ContextPipeline struct {
	store     repository.ContextStore
	fetcher   repository.TranscriptFetcher
	extractor repository.ContentExtractor
	sanitizer *sanitizer.Sanitizer
	prompts   *PromptBuilder
	backend   *ResponseBackend
	selector  *ModelSelector
	cfg       PipelineConfig
	logger    *zap.Logger
}

// NewContextPipeline wires the pipeline collaborators
func NewContextPipeline(
	store repository.ContextStore,
	fetcher repository.TranscriptFetcher,
	extractor repository.ContentExtractor,
	clean *sanitizer.Sanitizer,
	prompts *PromptBuilder,
	backend *ResponseBackend,
	selector *ModelSelector,
	cfg PipelineConfig,
	logger *zap.Logger,
) *ContextPipeline {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = language.Default
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 10
	}
	if cfg.AnswerTimeout <= 0 {
		cfg.AnswerTimeout = 5 * time.Minute
	}
	if clean == nil {
		clean = sanitizer.New(nil)
	}
	if prompts == nil {
		prompts = NewPromptBuilder(nil)
	}
	return &ContextPipeline{
		store:     store,
		fetcher:   fetcher,
		extractor: extractor,
		sanitizer: clean,
		prompts:   prompts,
		backend:   backend,
		selector:  selector,
		cfg:       cfg,
		logger:    logger,
	}
}

// IngestFromTranscript fetches a transcript and stores it as the user's context.
// The result is returned for every status so callers can list available languages;
// the report is only filled in when the transcript was stored.
func (p *ContextPipeline) IngestFromTranscript(ctx context.Context, userID int64, identifier, preferredLanguage string) (entity.TranscriptResult, IngestReport, error) {
	current, err := p.store.Get(ctx, userID)
	if err != nil {
		return entity.TranscriptResult{}, IngestReport{}, fmt.Errorf("failed to get context: %w", err)
	}
	if preferredLanguage == "" && current != nil {
		preferredLanguage = current.Language
	}

	result := p.fetcher.Fetch(ctx, identifier, preferredLanguage)
	if !result.OK() {
		p.logger.Info("transcript not ingested",
			zap.Int64("user_id", userID),
			zap.String("identifier", identifier),
			zap.Stringer("status", result.Status))
		return result, IngestReport{}, result.Err()
	}

	lang := result.SelectedLanguage
	if lang == "" {
		lang = language.Detect(result.Text)
	}
	report, err := p.write(ctx, userID, current, result.Text, result.Title, lang)
	if err != nil {
		return result, IngestReport{}, err
	}

	p.logger.Info("transcript ingested",
		zap.Int64("user_id", userID),
		zap.String("video_id", result.VideoID),
		zap.String("language", lang),
		zap.Int("chars", report.Characters),
		zap.Int("tokens", report.TokenCount),
		zap.Bool("exceeds_budget", report.ExceedsBudget))
	return result, report, nil
}

// IngestOption adjusts a document ingestion
type IngestOption func(*ingestOptions)

type ingestOptions struct {
	title string
}

// WithTitle overrides the title derived from the source.
func WithTitle(title string) IngestOption {
	return func(o *ingestOptions) { o.title = title }
}

// IngestFromDocument extracts a web page or document and stores it as the user's context.
func (p *ContextPipeline) IngestFromDocument(ctx context.Context, userID int64, source string, opts ...IngestOption) (IngestReport, error) {
	var o ingestOptions
	for _, opt := range opts {
		opt(&o)
	}

	text, err := p.extractor.Extract(ctx, source)
	if err != nil {
		return IngestReport{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return IngestReport{}, fmt.Errorf("%w: no text found in %s", entity.ErrUnsupportedSource, source)
	}

	title := o.title
	if title == "" {
		title = sourceTitle(source)
	}
	lang := language.Detect(text)

	current, err := p.store.Get(ctx, userID)
	if err != nil {
		return IngestReport{}, fmt.Errorf("failed to get context: %w", err)
	}
	report, err := p.write(ctx, userID, current, text, title, lang)
	if err != nil {
		return IngestReport{}, err
	}

	p.logger.Info("document ingested",
		zap.Int64("user_id", userID),
		zap.String("title", title),
		zap.String("language", lang),
		zap.Int("tokens", report.TokenCount),
		zap.Bool("exceeds_budget", report.ExceedsBudget))
	return report, nil
}

// write appends to or replaces the stored transcript and title.
func (p *ContextPipeline) write(ctx context.Context, userID int64, current *entity.UserContext, text, title, lang string) (IngestReport, error) {
	appended := current != nil && current.ContinueContext && current.HasText()
	if appended {
		text = current.Transcript + "\n" + text
		if current.Title != "" {
			title = current.Title + "\n" + title
		}
	}

	update := entity.ContextUpdate{
		Transcript: entity.String(text),
		Title:      entity.String(title),
		Language:   entity.String(lang),
	}
	if err := p.store.Save(ctx, userID, update); err != nil {
		return IngestReport{}, fmt.Errorf("failed to save context: %w", err)
	}

	res := p.sanitizer.Clean(text, lang, p.cfg.MaxContextTokens)
	return IngestReport{
		Title:         title,
		Language:      lang,
		Appended:      appended,
		Characters:    len([]rune(text)),
		TokenCount:    res.TokenCount,
		ExceedsBudget: res.ExceedsBudget,
	}, nil
}

// AnswerOption adjusts a single Answer call
type AnswerOption func(*answerOptions)

type answerOptions struct {
	maxLength int
}

// WithMaxLength bounds a superSummarize answer, in words.
func WithMaxLength(words int) AnswerOption {
	return func(o *answerOptions) { o.maxLength = words }
}

// Answer answers question grounded on the user's stored context.
func (p *ContextPipeline) Answer(ctx context.Context, userID int64, question string, queryType entity.QueryType, opts ...AnswerOption) (string, error) {
	var o answerOptions
	for _, opt := range opts {
		opt(&o)
	}

	uc, err := p.store.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get context: %w", err)
	}
	if queryType.RequiresContext() && !uc.HasText() {
		return "", entity.ErrNoContextAvailable
	}

	title, lang, text := entity.UnknownTitle, p.cfg.DefaultLanguage, ""
	if uc != nil {
		if uc.Title != "" {
			title = uc.Title
		}
		if uc.Language != "" {
			lang = uc.Language
		}
		text = uc.Transcript
	}

	// quotes must match the stored wording
	if queryType == entity.QueryContextualQuote {
		text = sanitizer.NormalizeWhitespace(text)
	} else if text != "" {
		res := p.sanitizer.Clean(text, lang, p.cfg.MaxContextTokens)
		if res.ExceedsBudget {
			p.logger.Warn("context exceeds token budget",
				zap.Int64("user_id", userID),
				zap.Int("tokens", res.TokenCount),
				zap.Int("budget", p.cfg.MaxContextTokens))
		}
		text = res.Text
	}

	prompt := p.prompts.Build(PromptInput{
		Question:  question,
		Context:   text,
		Title:     title,
		Language:  lang,
		Type:      queryType,
		MaxLength: o.maxLength,
	})

	resp, err := p.dispatch(ctx, prompt)
	if err != nil {
		return "", err
	}

	if queryType == entity.QuerySummarize || queryType == entity.QuerySuperSummarize {
		resp = title + "\n\n" + resp
	}
	return resp, nil
}

// AnswerGeneral free-form dialog grounded on recent message history.
// The question and the reply are both appended to the log.
func (p *ContextPipeline) AnswerGeneral(ctx context.Context, userID int64, question string) (string, error) {
	history, err := p.store.RecentMessages(ctx, userID, p.cfg.HistoryWindow, "")
	if err != nil {
		return "", fmt.Errorf("failed to get history: %w", err)
	}

	lang := p.cfg.DefaultLanguage
	uc, err := p.store.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get context: %w", err)
	}
	if uc != nil && uc.Language != "" {
		lang = uc.Language
	}

	if err := p.store.AppendMessage(ctx, userID, question, entity.OriginUser); err != nil {
		return "", fmt.Errorf("failed to save message: %w", err)
	}

	prompt := p.prompts.Build(PromptInput{
		Question: question,
		Context:  formatHistory(history),
		Title:    "Conversation history",
		Language: lang,
		Type:     entity.QueryGeneral,
	})

	resp, err := p.dispatch(ctx, prompt)
	if err != nil {
		return "", err
	}

	if err := p.store.AppendMessage(ctx, userID, resp, entity.OriginAssistant); err != nil {
		p.logger.Warn("failed to save reply", zap.Int64("user_id", userID), zap.Error(err))
	}
	return resp, nil
}

func formatHistory(history []entity.MessageLogEntry) string {
	var sb strings.Builder
	for _, m := range history {
		sb.WriteString(string(m.Origin))
		sb.WriteString(": ")
		sb.WriteString(m.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (p *ContextPipeline) dispatch(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.AnswerTimeout)
	defer cancel()

	// selection is read once; a concurrent /model applies to the next request
	return p.backend.Dispatch(ctx, p.selector.Current(), prompt)
}

// SetLanguage stores the preferred language after normalizing the code.
func (p *ContextPipeline) SetLanguage(ctx context.Context, userID int64, code string) (string, error) {
	lang, ok := language.Normalize(code)
	if !ok {
		return "", fmt.Errorf("unknown language code %q", code)
	}
	if err := p.store.Save(ctx, userID, entity.ContextUpdate{Language: entity.String(lang)}); err != nil {
		return "", fmt.Errorf("failed to save language: %w", err)
	}
	return lang, nil
}

// SetContinueContext switches between appending and replacing on ingestion.
func (p *ContextPipeline) SetContinueContext(ctx context.Context, userID int64, on bool) error {
	if err := p.store.Save(ctx, userID, entity.ContextUpdate{ContinueContext: entity.Bool(on)}); err != nil {
		return fmt.Errorf("failed to save continue flag: %w", err)
	}
	return nil
}

// ShowContext returns the stored context with its token report.
func (p *ContextPipeline) ShowContext(ctx context.Context, userID int64) (*ContextSummary, error) {
	uc, err := p.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}
	if !uc.HasText() {
		return nil, entity.ErrNoContextAvailable
	}

	lang := uc.Language
	if lang == "" {
		lang = p.cfg.DefaultLanguage
	}
	title := uc.Title
	if title == "" {
		title = entity.UnknownTitle
	}
	res := p.sanitizer.Clean(uc.Transcript, lang, p.cfg.MaxContextTokens)
	return &ContextSummary{
		Title:           title,
		Language:        lang,
		ContinueContext: uc.ContinueContext,
		Text:            uc.Transcript,
		TokenCount:      res.TokenCount,
		ExceedsBudget:   res.ExceedsBudget,
	}, nil
}

// RecordMessage logs a user message without answering it.
func (p *ContextPipeline) RecordMessage(ctx context.Context, userID int64, text string) error {
	return p.store.AppendMessage(ctx, userID, text, entity.OriginUser)
}

// SelectModel switches the provider used by later answers.
func (p *ContextPipeline) SelectModel(name string) (entity.ModelName, error) {
	model, err := p.selector.Select(name)
	if err != nil {
		return model, err
	}
	if !p.backend.Has(model) {
		p.logger.Warn("selected model has no provider configured", zap.String("model", string(model)))
	}
	p.logger.Info("model selected", zap.String("model", string(model)))
	return model, nil
}

// CurrentModel reports which model answers the next query
func (p *ContextPipeline) CurrentModel() entity.ModelName {
	return p.selector.Current()
}

// FindRecentLink returns the newest word in the user's recent messages accepted by match.
func (p *ContextPipeline) FindRecentLink(ctx context.Context, userID int64, match func(string) bool) (string, bool, error) {
	msgs, err := p.store.RecentMessages(ctx, userID, p.cfg.HistoryWindow, entity.OriginUser)
	if err != nil {
		return "", false, fmt.Errorf("failed to get history: %w", err)
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		fields := strings.Fields(msgs[i].Text)
		for j := len(fields) - 1; j >= 0; j-- {
			if match(fields[j]) {
				return fields[j], true, nil
			}
		}
	}
	return "", false, nil
}

// sourceTitle file base name for documents, the URL itself for pages
func sourceTitle(source string) string {
	source = strings.TrimSpace(source)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	return filepath.Base(source)
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/extractor"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/youtube"
	"github.com/yourusername/context-ai-bot/internal/usecase"
	"go.uber.org/zap"
)

// MaxMessageLength Telegram limit for one text message
const MaxMessageLength = 4096

// maxDocumentSize bots cannot download files above 20MB
const maxDocumentSize = 20 * 1024 * 1024

// Pipeline operations the transport exposes
type Pipeline interface {
	IngestFromTranscript(ctx context.Context, userID int64, identifier, preferredLanguage string) (entity.TranscriptResult, usecase.IngestReport, error)
	IngestFromDocument(ctx context.Context, userID int64, source string, opts ...usecase.IngestOption) (usecase.IngestReport, error)
	Answer(ctx context.Context, userID int64, question string, queryType entity.QueryType, opts ...usecase.AnswerOption) (string, error)
	AnswerGeneral(ctx context.Context, userID int64, question string) (string, error)
	SetLanguage(ctx context.Context, userID int64, code string) (string, error)
	SetContinueContext(ctx context.Context, userID int64, on bool) error
	ShowContext(ctx context.Context, userID int64) (*usecase.ContextSummary, error)
	RecordMessage(ctx context.Context, userID int64, text string) error
	SelectModel(name string) (entity.ModelName, error)
	CurrentModel() entity.ModelName
	FindRecentLink(ctx context.Context, userID int64, match func(string) bool) (string, bool, error)
}

// botAPI the part of tgbotapi.BotAPI the handler uses
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// BotHandler Telegram bot handler
type BotHandler struct {
	bot         botAPI
	botName     string
	pipeline    Pipeline
	logger      *zap.Logger
	httpClient  *http.Client
	fileURL     func(tgbotapi.File) string
	acceptsFile func(name string) bool
}

// Option configures a BotHandler
type Option func(*BotHandler)

// WithDocumentFilter decides which uploaded file names are ingested.
func WithDocumentFilter(accepts func(name string) bool) Option {
	return func(h *BotHandler) { h.acceptsFile = accepts }
}

// NewBotHandler creates the bot client and the handler
func NewBotHandler(token string, pipeline Pipeline, logger *zap.Logger, opts ...Option) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h := newHandler(bot, pipeline, logger, opts...)
	h.botName = bot.Self.UserName
	h.fileURL = func(f tgbotapi.File) string { return f.Link(token) }
	return h, nil
}

func newHandler(bot botAPI, pipeline Pipeline, logger *zap.Logger, opts ...Option) *BotHandler {
	h := &BotHandler{
		bot:         bot,
		pipeline:    pipeline,
		logger:      logger,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
		acceptsFile: defaultDocumentFilter,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func defaultDocumentFilter(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".xlsx", ".xlsm", ".txt", ".md":
		return true
	}
	return false
}

// Start polls updates until ctx is canceled. Every message runs in its own goroutine.
func (h *BotHandler) Start(ctx context.Context) error {
	h.logger.Info("bot started", zap.String("username", h.botName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("bot stopping")
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			go h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("handler panic", zap.Any("panic", r), zap.Int64("user_id", message.From.ID))
			h.sendMessage(message.Chat.ID, "Something went wrong. Please try again later.")
		}
	}()

	if message.Document != nil {
		h.handleDocumentMessage(ctx, message)
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	if strings.TrimSpace(message.Text) != "" {
		h.handleTextMessage(ctx, message)
	}
}

func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	h.logger.Info("command",
		zap.Int64("user_id", message.From.ID),
		zap.String("username", message.From.UserName),
		zap.String("command", message.Command()))

	switch message.Command() {
	case "start":
		h.sendMessage(message.Chat.ID, welcomeMessage)
	case "help":
		h.sendMessage(message.Chat.ID, helpMessage)
	case "ts":
		h.handleTranscriptCommand(ctx, message)
	case "web":
		h.handleWebCommand(ctx, message)
	case "sl":
		h.handleSetLanguageCommand(ctx, message)
	case "cc":
		h.handleContinueCommand(ctx, message)
	case "show":
		h.handleShowCommand(ctx, message)
	case "sm":
		h.handleAnswer(ctx, message, "Summarize the transcript.", entity.QuerySummarize)
	case "ssm":
		h.handleSuperSummaryCommand(ctx, message)
	case "q":
		h.handleQuestionCommand(ctx, message, entity.QueryContextualQuote)
	case "ask":
		h.handleQuestionCommand(ctx, message, entity.QueryGeneral)
	case "model":
		h.handleModelCommand(message)
	default:
		h.sendMessage(message.Chat.ID, "Unknown command. See /help.")
	}
}

// handleTranscriptCommand /ts <url|id> [lang]
func (h *BotHandler) handleTranscriptCommand(ctx context.Context, message *tgbotapi.Message) {
	userID, chatID := message.From.ID, message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	var identifier, lang string
	if len(args) > 0 {
		identifier = args[0]
	}
	if len(args) > 1 {
		lang = args[1]
	}
	if identifier == "" {
		identifier = h.recentLink(ctx, userID, isVideoReference)
	}
	if identifier == "" {
		h.sendMessage(chatID, "Please provide a YouTube video URL, e.g. /ts https://youtu.be/abc123 [language]")
		return
	}

	h.sendMessage(chatID, "Fetching transcript...")
	h.sendTyping(chatID)

	result, report, err := h.pipeline.IngestFromTranscript(ctx, userID, identifier, lang)
	if err != nil {
		h.logger.Info("transcript failed", zap.Int64("user_id", userID), zap.Error(err))
		reply := usecase.UserMessage(err)
		if len(result.AvailableLanguages) > 0 {
			reply += "\nAvailable languages: " + strings.Join(result.AvailableLanguages, ", ")
		}
		h.sendMessage(chatID, reply)
		return
	}

	title := result.Title
	if title == "" {
		title = entity.UnknownTitle
	}
	reply := fmt.Sprintf("Transcript saved: %s\nLanguage: %s", title, result.SelectedLanguage)
	if len(result.AvailableLanguages) > 1 {
		reply += "\nAvailable languages: " + strings.Join(result.AvailableLanguages, ", ")
	}
	if report.Appended {
		reply += "\nAppended to the previous context."
	}
	if report.ExceedsBudget {
		reply += fmt.Sprintf("\n⚠️ The context is large (%d tokens). Answers may be slow or incomplete.", report.TokenCount)
	}
	h.sendMessage(chatID, reply)
}

// handleWebCommand /web <url>
func (h *BotHandler) handleWebCommand(ctx context.Context, message *tgbotapi.Message) {
	userID, chatID := message.From.ID, message.Chat.ID

	source := strings.TrimSpace(message.CommandArguments())
	if source == "" {
		source = h.recentLink(ctx, userID, extractor.IsWebURL)
	}
	if source == "" {
		h.sendMessage(chatID, "Please provide a web page URL, e.g. /web https://example.com/article")
		return
	}

	h.sendMessage(chatID, "Loading page...")
	h.sendTyping(chatID)

	report, err := h.pipeline.IngestFromDocument(ctx, userID, source)
	if err != nil {
		h.logger.Info("web ingestion failed", zap.Int64("user_id", userID), zap.String("url", source), zap.Error(err))
		h.sendMessage(chatID, ingestFailureMessage(err))
		return
	}
	h.sendMessage(chatID, formatReport("Page saved", report))
}

// handleDocumentMessage PDF/XLSX/TXT upload
func (h *BotHandler) handleDocumentMessage(ctx context.Context, message *tgbotapi.Message) {
	userID, chatID := message.From.ID, message.Chat.ID
	doc := message.Document

	if !h.acceptsFile(doc.FileName) {
		h.sendMessage(chatID, usecase.UserMessage(entity.ErrUnsupportedSource))
		return
	}
	if doc.FileSize > maxDocumentSize {
		h.sendMessage(chatID, "❌ The file must not be larger than 20MB.")
		return
	}

	h.sendMessage(chatID, "⏳ Reading document...")

	path, err := h.downloadFile(ctx, doc.FileID, filepath.Ext(doc.FileName))
	if err != nil {
		h.logger.Error("file download failed", zap.Int64("user_id", userID), zap.Error(err))
		h.sendMessage(chatID, "❌ Could not download the file.")
		return
	}
	defer os.Remove(path)

	report, err := h.pipeline.IngestFromDocument(ctx, userID, path, usecase.WithTitle(doc.FileName))
	if err != nil {
		h.logger.Info("document ingestion failed", zap.Int64("user_id", userID), zap.String("file", doc.FileName), zap.Error(err))
		h.sendMessage(chatID, ingestFailureMessage(err))
		return
	}
	h.sendMessage(chatID, formatReport("Document saved", report))
}

// downloadFile stores a Telegram file in a temp file and returns its path
func (h *BotHandler) downloadFile(ctx context.Context, fileID, ext string) (string, error) {
	file, err := h.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.fileURL(file), nil)
	if err != nil {
		return "", err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "upload-*"+strings.ToLower(ext))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxDocumentSize+1)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// handleSetLanguageCommand /sl <lang>
func (h *BotHandler) handleSetLanguageCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	code := strings.TrimSpace(message.CommandArguments())
	if code == "" {
		h.sendMessage(chatID, "Please provide a language code, e.g. /sl en")
		return
	}

	lang, err := h.pipeline.SetLanguage(ctx, message.From.ID, code)
	if err != nil {
		h.sendMessage(chatID, fmt.Sprintf("Unknown language code '%s'.", code))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("Language set to '%s'. Now send /ts <youtube_url>", lang))
}

// handleContinueCommand /cc on|off
func (h *BotHandler) handleContinueCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	var on bool
	switch strings.ToLower(strings.TrimSpace(message.CommandArguments())) {
	case "on", "1", "true", "yes":
		on = true
	case "off", "0", "false", "no":
		on = false
	default:
		h.sendMessage(chatID, "Usage: /cc on (append new sources to the context) or /cc off (replace it)")
		return
	}

	if err := h.pipeline.SetContinueContext(ctx, message.From.ID, on); err != nil {
		h.logger.Error("set continue failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		h.sendMessage(chatID, usecase.UserMessage(err))
		return
	}
	if on {
		h.sendMessage(chatID, "New sources will be appended to the current context.")
	} else {
		h.sendMessage(chatID, "New sources will replace the current context.")
	}
}

func (h *BotHandler) handleShowCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	summary, err := h.pipeline.ShowContext(ctx, message.From.ID)
	if err != nil {
		h.sendMessage(chatID, usecase.UserMessage(err))
		return
	}

	mode := "replace"
	if summary.ContinueContext {
		mode = "append"
	}
	header := fmt.Sprintf("%s\nLanguage: %s | Mode: %s | Tokens: %d", summary.Title, summary.Language, mode, summary.TokenCount)
	h.sendMessage(chatID, header+"\n\n"+summary.Text)
}

// handleSuperSummaryCommand /ssm <max words>
func (h *BotHandler) handleSuperSummaryCommand(ctx context.Context, message *tgbotapi.Message) {
	words, err := parseWordLimit(message.CommandArguments())
	if err != nil {
		h.sendMessage(message.Chat.ID, "Usage: /ssm <max words>, e.g. /ssm 100")
		return
	}
	h.handleAnswer(ctx, message, "Summarize the transcript briefly.", entity.QuerySuperSummarize, usecase.WithMaxLength(words))
}

func (h *BotHandler) handleQuestionCommand(ctx context.Context, message *tgbotapi.Message, queryType entity.QueryType) {
	question := strings.TrimSpace(message.CommandArguments())
	if question == "" {
		h.sendMessage(message.Chat.ID, fmt.Sprintf("Please add a question, e.g. /%s what is the main idea?", message.Command()))
		return
	}
	h.handleAnswer(ctx, message, question, queryType)
}

func (h *BotHandler) handleAnswer(ctx context.Context, message *tgbotapi.Message, question string, queryType entity.QueryType, opts ...usecase.AnswerOption) {
	userID, chatID := message.From.ID, message.Chat.ID
	h.sendTyping(chatID)

	answer, err := h.pipeline.Answer(ctx, userID, question, queryType, opts...)
	if err != nil {
		h.logger.Info("answer failed",
			zap.Int64("user_id", userID),
			zap.Stringer("query_type", queryType),
			zap.Error(err))
		h.sendMessage(chatID, usecase.UserMessage(err))
		return
	}
	h.logger.Info("answer sent",
		zap.Int64("user_id", userID),
		zap.Stringer("query_type", queryType),
		zap.Int("chars", len(answer)))
	h.sendMessage(chatID, answer)
}

// handleModelCommand /model [remote|local]
func (h *BotHandler) handleModelCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	name := strings.TrimSpace(message.CommandArguments())
	if name == "" {
		h.sendMessage(chatID, fmt.Sprintf("Current model: %s\nUse /model remote or /model local to switch.", h.pipeline.CurrentModel()))
		return
	}

	model, err := h.pipeline.SelectModel(name)
	if err != nil {
		h.sendMessage(chatID, usecase.UserMessage(err)+fmt.Sprintf(" Current model: %s", model))
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("Model switched to %s.", model))
}

// handleTextMessage a bare link is remembered for /ts and /web, anything else is a dialog turn
func (h *BotHandler) handleTextMessage(ctx context.Context, message *tgbotapi.Message) {
	userID, chatID := message.From.ID, message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if fields := strings.Fields(text); len(fields) == 1 {
		var hint string
		switch {
		case youtube.IsYouTubeURL(fields[0]):
			hint = "Got the video link. Send /ts to load its transcript."
		case extractor.IsWebURL(fields[0]):
			hint = "Got the link. Send /web to load the page."
		}
		if hint != "" {
			if err := h.pipeline.RecordMessage(ctx, userID, text); err != nil {
				h.logger.Warn("failed to record message", zap.Int64("user_id", userID), zap.Error(err))
			}
			h.sendMessage(chatID, hint)
			return
		}
	}

	h.sendTyping(chatID)
	answer, err := h.pipeline.AnswerGeneral(ctx, userID, text)
	if err != nil {
		h.logger.Info("dialog answer failed", zap.Int64("user_id", userID), zap.Error(err))
		h.sendMessage(chatID, usecase.UserMessage(err))
		return
	}
	h.sendMessage(chatID, answer)
}

func (h *BotHandler) recentLink(ctx context.Context, userID int64, match func(string) bool) string {
	link, ok, err := h.pipeline.FindRecentLink(ctx, userID, match)
	if err != nil {
		h.logger.Warn("recent link lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return link
}

func isVideoReference(s string) bool {
	return youtube.IsYouTubeURL(s) || youtube.IsVideoID(s)
}

// sendMessage sends text, split into chunks Telegram accepts
func (h *BotHandler) sendMessage(chatID int64, text string) {
	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := h.bot.Send(msg); err != nil {
			h.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
}

func (h *BotHandler) sendTyping(chatID int64) {
	if _, err := h.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		h.logger.Debug("chat action failed", zap.Error(err))
	}
}

// SplitMessage cuts text into chunks of at most limit characters, preferring
// the last newline before the limit. Leading newlines of a chunk are dropped.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	runes := []rune(text)
	var chunks []string
	for len(runes) > limit {
		cut := lastNewline(runes[:limit])
		if cut <= 0 {
			cut = limit
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
		for len(runes) > 0 && runes[0] == '\n' {
			runes = runes[1:]
		}
	}
	return append(chunks, string(runes))
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}

func parseWordLimit(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return usecase.DefaultSummaryWords, nil
	}
	n, err := strconv.Atoi(strings.Fields(arg)[0])
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("word limit must be positive")
	}
	return n, nil
}

func ingestFailureMessage(err error) string {
	if errors.Is(err, entity.ErrUnsupportedSource) {
		return usecase.UserMessage(err)
	}
	return "❌ Could not read the source. " + usecase.UserMessage(err)
}

func formatReport(prefix string, r usecase.IngestReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\nLanguage: %s\nTokens: %d", prefix, r.Title, r.Language, r.TokenCount)
	if r.Appended {
		sb.WriteString("\nAppended to the previous context.")
	}
	if r.ExceedsBudget {
		sb.WriteString("\n⚠️ The context is large. Answers may be slow or incomplete.")
	}
	return sb.String()
}

const welcomeMessage = `Hi! I answer questions about videos, web pages and documents.

Send /ts <youtube_url> to load a transcript, /web <url> for a page, or just send a PDF, XLSX or TXT file.
Then use /sm for a summary or /q <question> to ask about it. /help lists everything.`

const helpMessage = `Commands:
/ts <url|id> [lang] - load a YouTube transcript
/web <url> - load a web page
/sl <lang> - set the preferred language, e.g. /sl de
/cc on|off - append new sources to the context or replace it
/show - show the stored context
/sm - summarize the context
/ssm <max words> - short summary
/q <question> - answer with a quote from the context
/ask <question> - ask anything, using the context when relevant
/model [remote|local] - show or switch the model

Documents: send a PDF, XLSX or TXT file to use it as the context.
Any other message is answered as a normal conversation.`

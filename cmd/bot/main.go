package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/context-ai-bot/config"
	"github.com/yourusername/context-ai-bot/internal/delivery/telegram"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/extractor"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/gemini"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/ollama"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/parser"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/sanitizer"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/storage"
	"github.com/yourusername/context-ai-bot/internal/infrastructure/youtube"
	"github.com/yourusername/context-ai-bot/internal/pkg/logger"
	"github.com/yourusername/context-ai-bot/internal/pkg/retry"
	"github.com/yourusername/context-ai-bot/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New(cfg.LogFile, cfg.IsProduction())
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatal("bot stopped", zap.Error(err))
	}
	zlog.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	store, err := storage.NewSQLiteContextStore(cfg.ChatDBPath, cfg.MessageHistoryLimit)
	if err != nil {
		return err
	}
	defer store.Close()

	cache := youtube.NewCache(cfg.TranscriptCacheTTL, cfg.RedisURL, zlog.Named("cache"))
	defer cache.Close()

	fetcher := youtube.NewFetcher(youtube.NewClient(), zlog.Named("youtube"),
		youtube.WithCache(cache),
		youtube.WithRetryPolicy(retry.Policy{
			MaxAttempts: cfg.TranscriptRetryAttempts,
			BaseDelay:   cfg.TranscriptRetryDelay,
		}),
	)

	ext := extractor.New(
		extractor.NewChromeRenderer(cfg.PageRenderTimeout),
		zlog.Named("extractor"),
		parser.NewPDFParser(),
		parser.NewXLSXParser(),
		parser.NewTextParser(),
	)

	providers := map[entity.ModelName]repository.Provider{
		entity.ModelLocal: ollama.NewClient(cfg.OllamaBaseURL, cfg.OllamaModel),
	}
	if cfg.GeminiAPIKey != "" {
		remote, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		if c, ok := remote.(io.Closer); ok {
			defer c.Close()
		}
		providers[entity.ModelRemote] = remote
	} else {
		zlog.Warn("GEMINI_API_KEY is empty, remote model disabled")
	}
	backend := usecase.NewResponseBackend(providers, zlog.Named("backend"))

	pipeline := usecase.NewContextPipeline(
		store,
		fetcher,
		ext,
		sanitizer.New(sanitizer.DefaultCounter()),
		usecase.NewPromptBuilder(nil),
		backend,
		usecase.NewModelSelector(cfg.DefaultModel),
		usecase.PipelineConfig{
			DefaultLanguage:  cfg.DefaultLanguage,
			MaxContextTokens: cfg.MaxContextTokens,
			HistoryWindow:    cfg.HistoryWindow,
		},
		zlog.Named("pipeline"),
	)

	handler, err := telegram.NewBotHandler(cfg.TelegramToken, pipeline, zlog.Named("telegram"),
		telegram.WithDocumentFilter(ext.Supports))
	if err != nil {
		return err
	}

	zlog.Info("starting",
		zap.String("db", cfg.ChatDBPath),
		zap.String("default_model", string(cfg.DefaultModel)),
		zap.String("default_language", cfg.DefaultLanguage))
	return handler.Start(ctx)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
)

// Config application configuration
type Config struct {
	TelegramToken string

	GeminiAPIKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string
	DefaultModel  entity.ModelName

	ChatDBPath       string
	DefaultLanguage  string
	MaxContextTokens int
	HistoryWindow    int
	// MessageHistoryLimit caps each user's stored message log, 0 keeps it append-only
	MessageHistoryLimit int

	TranscriptRetryAttempts int
	TranscriptRetryDelay    time.Duration
	TranscriptCacheTTL      time.Duration
	PageRenderTimeout       time.Duration
	RedisURL                string

	LogFile string
	AppEnv  string
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envString("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaBaseURL:   envString("OLLAMA_BASE_URL", "http://127.0.0.1:11434"),
		OllamaModel:     envString("OLLAMA_MODEL", "dolphin-llama3"),
		ChatDBPath:      envString("CHAT_DB_PATH", "data/bot.db"),
		DefaultLanguage: strings.ToLower(envString("DEFAULT_LANGUAGE", "en")),
		RedisURL:        os.Getenv("REDIS_URL"),
		LogFile:         envString("LOG_FILE", "logs/bot.log"),
		AppEnv:          envString("APP_ENV", "development"),
	}

	model, err := entity.ParseModelName(envString("DEFAULT_MODEL", string(entity.ModelRemote)))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_MODEL: %w", err)
	}
	cfg.DefaultModel = model

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"MAX_CONTEXT_TOKENS", 16000, &cfg.MaxContextTokens},
		{"HISTORY_WINDOW", 10, &cfg.HistoryWindow},
		{"MESSAGE_HISTORY_LIMIT", 0, &cfg.MessageHistoryLimit},
		{"TRANSCRIPT_RETRY_ATTEMPTS", 3, &cfg.TranscriptRetryAttempts},
	}
	for _, f := range ints {
		v, err := envInt(f.key, f.def)
		if err != nil {
			return nil, err
		}
		*f.dest = v
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"TRANSCRIPT_RETRY_DELAY", time.Second, &cfg.TranscriptRetryDelay},
		{"TRANSCRIPT_CACHE_TTL", time.Hour, &cfg.TranscriptCacheTTL},
		{"PAGE_RENDER_TIMEOUT", 15 * time.Second, &cfg.PageRenderTimeout},
	}
	for _, f := range durations {
		v, err := envDuration(f.key, f.def)
		if err != nil {
			return nil, err
		}
		*f.dest = v
	}

	// Validation
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is empty")
	}
	if cfg.GeminiAPIKey == "" && cfg.DefaultModel == entity.ModelRemote {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is empty (set DEFAULT_MODEL=local to run without it)")
	}
	if cfg.HistoryWindow <= 0 {
		return nil, fmt.Errorf("HISTORY_WINDOW must be positive, got %d", cfg.HistoryWindow)
	}
	if cfg.MessageHistoryLimit < 0 {
		return nil, fmt.Errorf("MESSAGE_HISTORY_LIMIT must not be negative, got %d", cfg.MessageHistoryLimit)
	}
	if cfg.MessageHistoryLimit > 0 && cfg.MessageHistoryLimit < cfg.HistoryWindow {
		return nil, fmt.Errorf("MESSAGE_HISTORY_LIMIT (%d) must be 0 or at least HISTORY_WINDOW (%d)", cfg.MessageHistoryLimit, cfg.HistoryWindow)
	}
	if cfg.TranscriptCacheTTL <= 0 {
		return nil, fmt.Errorf("TRANSCRIPT_CACHE_TTL must be positive, got %s", cfg.TranscriptCacheTTL)
	}
	if cfg.TranscriptRetryAttempts <= 0 {
		return nil, fmt.Errorf("TRANSCRIPT_RETRY_ATTEMPTS must be positive, got %d", cfg.TranscriptRetryAttempts)
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s is not a duration: %w", key, err)
	}
	return v, nil
}

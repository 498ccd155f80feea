package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "transcript:"

// Cache keeps successful transcripts in process memory and, when configured,
// in redis so restarts do not refetch popular videos.
type Cache struct {
	local  *gocache.Cache
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache builds a transcript cache. An empty redisURL keeps it in memory
// only; an unreachable redis is logged and skipped.
func NewCache(ttl time.Duration, redisURL string, logger *zap.Logger) *Cache {
	c := &Cache{
		local:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
	if redisURL == "" {
		return c
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid REDIS_URL, transcript cache stays in memory", zap.Error(err))
		return c
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, transcript cache stays in memory", zap.Error(err))
		client.Close()
		return c
	}
	c.redis = client
	return c
}

func cacheKey(videoID, preferredLanguage string) string {
	return cacheKeyPrefix + videoID + ":" + preferredLanguage
}

// Get looks in memory first, then redis.
func (c *Cache) Get(ctx context.Context, key string) (entity.TranscriptResult, bool) {
	if v, ok := c.local.Get(key); ok {
		return v.(entity.TranscriptResult), true
	}
	if c.redis == nil {
		return entity.TranscriptResult{}, false
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return entity.TranscriptResult{}, false
	}
	var res entity.TranscriptResult
	if err := json.Unmarshal(data, &res); err != nil {
		return entity.TranscriptResult{}, false
	}
	c.local.Set(key, res, gocache.DefaultExpiration)
	return res, true
}

// Set stores a result in both tiers.
func (c *Cache) Set(ctx context.Context, key string, res entity.TranscriptResult) {
	c.local.Set(key, res, gocache.DefaultExpiration)
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the redis connection.
func (c *Cache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

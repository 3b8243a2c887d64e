package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kadekedwin/billforge/services/receipt-service/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ImageCachePrefix = "proxy:image:"
	DefaultImageTTL  = 24 * time.Hour
)

// ImageCache stores proxied images so repeated logo requests skip the upstream.
type ImageCache interface {
	Get(ctx context.Context, rawURL string) (models.ProxiedImage, bool)
	SetAsync(rawURL string, img models.ProxiedImage)
}

// RedisImageCache keeps each image in a hash {content_type, body}.
type RedisImageCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisImageCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisImageCache {
	if ttl <= 0 {
		ttl = DefaultImageTTL
	}
	return &RedisImageCache{redis: client, ttl: ttl, logger: logger}
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return ImageCachePrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached image for rawURL. Any Redis failure is a miss.
func (c *RedisImageCache) Get(ctx context.Context, rawURL string) (models.ProxiedImage, bool) {
	fields, err := c.redis.HGetAll(ctx, cacheKey(rawURL)).Result()
	if err != nil {
		c.logger.Warn("Image cache read failed", zap.Error(err))
		return models.ProxiedImage{}, false
	}
	body, ok := fields["body"]
	if !ok {
		return models.ProxiedImage{}, false
	}
	return models.ProxiedImage{
		Body:        []byte(body),
		ContentType: fields["content_type"],
		Cached:      true,
	}, true
}

// Set stores img under rawURL with the cache TTL.
func (c *RedisImageCache) Set(ctx context.Context, rawURL string, img models.ProxiedImage) error {
	key := cacheKey(rawURL)
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "content_type", img.ContentType, "body", img.Body)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache image: %w", err)
	}
	return nil
}

// SetAsync caches img in the background.
func (c *RedisImageCache) SetAsync(rawURL string, img models.ProxiedImage) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.Set(bgCtx, rawURL, img); err != nil {
			c.logger.Warn("Failed to cache proxied image", zap.Error(err))
		}
	}()
}

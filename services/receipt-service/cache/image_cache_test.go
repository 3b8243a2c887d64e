package cache

import (
	"context"
	"testing"
	"time"

	"github.com/kadekedwin/billforge/services/receipt-service/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*RedisImageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisImageCache(client, time.Hour, zap.NewNop()), mr
}

func TestImageCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	url := "https://cdn.example.com/logo.png"

	_, ok := c.Get(ctx, url)
	assert.False(t, ok)

	body := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	require.NoError(t, c.Set(ctx, url, models.ProxiedImage{Body: body, ContentType: "image/png"}))

	img, ok := c.Get(ctx, url)
	require.True(t, ok)
	assert.Equal(t, body, img.Body)
	assert.Equal(t, "image/png", img.ContentType)
	assert.True(t, img.Cached)

	assert.Equal(t, time.Hour, mr.TTL(cacheKey(url)))

	mr.FastForward(2 * time.Hour)
	_, ok = c.Get(ctx, url)
	assert.False(t, ok)
}

func TestImageCache_SetAsync(t *testing.T) {
	c, _ := newTestCache(t)
	url := "https://cdn.example.com/a.jpg"
	c.SetAsync(url, models.ProxiedImage{Body: []byte("jpg"), ContentType: "image/jpeg"})

	assert.Eventually(t, func() bool {
		_, ok := c.Get(context.Background(), url)
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestImageCache_RedisDownIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	_, ok := c.Get(context.Background(), "https://cdn.example.com/x.png")
	assert.False(t, ok)
}

func TestNewRedisImageCache_DefaultTTL(t *testing.T) {
	c := NewRedisImageCache(nil, 0, zap.NewNop())
	assert.Equal(t, DefaultImageTTL, c.ttl)
}

package database

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kadekedwin/billforge/services/cart-service/cart"
	"github.com/redis/go-redis/v9"
)

// CartRepository persists one counted-map cart per session.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (cart.Cart, error)
	Add(ctx context.Context, sessionID, itemID string) (int, error)
	Remove(ctx context.Context, sessionID, itemID string) (int, error)
	Clear(ctx context.Context, sessionID string) error
}

// removeScript decrements a hash field and deletes it when it reaches zero,
// so a zero quantity is never observable. Absent fields stay absent.
var removeScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
  return 0
end
local q = redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
if q <= 0 then
  redis.call('HDEL', KEYS[1], ARGV[1])
  q = 0
end
if redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return q
`)

// RedisCartRepository stores each cart as a hash of item id to quantity.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func (r *RedisCartRepository) key(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (r *RedisCartRepository) Get(ctx context.Context, sessionID string) (cart.Cart, error) {
	fields, err := r.client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	c := cart.New()
	for id, raw := range fields {
		q, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt quantity for %s: %w", id, err)
		}
		if q > 0 {
			c[id] = q
		}
	}
	return c, nil
}

func (r *RedisCartRepository) Add(ctx context.Context, sessionID, itemID string) (int, error) {
	key := r.key(sessionID)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, itemID, 1)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (r *RedisCartRepository) Remove(ctx context.Context, sessionID, itemID string) (int, error) {
	q, err := removeScript.Run(ctx, r.client, []string{r.key(sessionID)}, itemID, r.ttl.Milliseconds()).Int()
	if err != nil {
		return 0, err
	}
	return q, nil
}

func (r *RedisCartRepository) Clear(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}

// MemoryCartRepository keeps carts in process memory. Used when no Redis is configured.
type MemoryCartRepository struct {
	mu     sync.Mutex
	stores map[string]*cart.Store
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{stores: make(map[string]*cart.Store)}
}

func (m *MemoryCartRepository) store(sessionID string) *cart.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[sessionID]
	if !ok {
		s = cart.NewStore()
		m.stores[sessionID] = s
	}
	return s
}

func (m *MemoryCartRepository) Get(_ context.Context, sessionID string) (cart.Cart, error) {
	return m.store(sessionID).Snapshot(), nil
}

func (m *MemoryCartRepository) Add(_ context.Context, sessionID, itemID string) (int, error) {
	return m.store(sessionID).Add(itemID), nil
}

func (m *MemoryCartRepository) Remove(_ context.Context, sessionID, itemID string) (int, error) {
	return m.store(sessionID).Remove(itemID), nil
}

// Clear empties the session's store in place so an Add holding the same store
// is never lost.
func (m *MemoryCartRepository) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	s, ok := m.stores[sessionID]
	m.mu.Unlock()
	if ok {
		s.Clear()
	}
	return nil
}

package intake

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultProcessedKey is the Redis set holding processed message keys.
const DefaultProcessedKey = "servicedesk:intake:processed"

// Deduper remembers which messages were already turned into tickets.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
	Reset(ctx context.Context) error
}

// MemoryDeduper keeps processed keys for the life of the process.
type MemoryDeduper struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{keys: make(map[string]struct{})}
}

func (d *MemoryDeduper) Seen(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.keys[key]
	return ok, nil
}

func (d *MemoryDeduper) Mark(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[key] = struct{}{}
	return nil
}

func (d *MemoryDeduper) Reset(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys = make(map[string]struct{})
	return nil
}

// RedisDeduper stores processed keys in a Redis set so restarts and
// replicas share them.
type RedisDeduper struct {
	client redis.Cmdable
	set    string
}

// NewRedisDeduper uses set as the Redis key; empty selects DefaultProcessedKey.
func NewRedisDeduper(client redis.Cmdable, set string) *RedisDeduper {
	if set == "" {
		set = DefaultProcessedKey
	}
	return &RedisDeduper{client: client, set: set}
}

func (d *RedisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	return d.client.SIsMember(ctx, d.set, key).Result()
}

func (d *RedisDeduper) Mark(ctx context.Context, key string) error {
	return d.client.SAdd(ctx, d.set, key).Err()
}

func (d *RedisDeduper) Reset(ctx context.Context) error {
	return d.client.Del(ctx, d.set).Err()
}

package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error

	// SetPipelineStatus mirrors a reel's (stage, progress) so status polling
	// does not hit Postgres on every request.
	SetPipelineStatus(ctx context.Context, reelID uuid.UUID, stage string, progress int, ttl time.Duration) error
	GetPipelineStatus(ctx context.Context, reelID uuid.UUID) (stage string, progress int, ok bool, err error)

	// AcquireRunLock takes the per-reel pipeline lock. Returns false when a
	// run already holds it.
	AcquireRunLock(ctx context.Context, reelID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseRunLock(ctx context.Context, reelID uuid.UUID) error

	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) SetPipelineStatus(ctx context.Context, reelID uuid.UUID, stage string, progress int, ttl time.Duration) error {
	return c.client.Set(ctx, PipelineStatusKey(reelID), encodeStatus(stage, progress), ttl).Err()
}

func (c *RedisCache) GetPipelineStatus(ctx context.Context, reelID uuid.UUID) (string, int, bool, error) {
	val, err := c.client.Get(ctx, PipelineStatusKey(reelID)).Result()
	if err == redis.Nil {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, err
	}
	stage, progress, derr := decodeStatus(val)
	if derr != nil {
		return "", 0, false, derr
	}
	return stage, progress, true, nil
}

func (c *RedisCache) AcquireRunLock(ctx context.Context, reelID uuid.UUID, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, RunLockKey(reelID), "1", ttl).Result()
}

func (c *RedisCache) ReleaseRunLock(ctx context.Context, reelID uuid.UUID) error {
	return c.client.Del(ctx, RunLockKey(reelID)).Err()
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func encodeStatus(stage string, progress int) string {
	return fmt.Sprintf("%s:%d", stage, progress)
}

func decodeStatus(val string) (string, int, error) {
	idx := strings.LastIndex(val, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("malformed pipeline status %q", val)
	}
	progress, err := strconv.Atoi(val[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed pipeline status %q", val)
	}
	return val[:idx], progress, nil
}

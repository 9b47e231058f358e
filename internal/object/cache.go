package object

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache remembers resolved uid -> id mappings. Only positive results are
// cached; the mapping never changes once an object exists.
type Cache interface {
	Get(ctx context.Context, uid int64) (int64, bool, error)
	Set(ctx context.Context, uid, id int64) error
}

// RedisCache is a Cache backed by Redis string keys with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to url and verifies the connection.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisCacheWithClient(client, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client (for testing)
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func objectKey(uid int64) string {
	return "hive:object:" + strconv.FormatInt(uid, 10)
}

func (c *RedisCache) Get(ctx context.Context, uid int64) (int64, bool, error) {
	id, err := c.client.Get(ctx, objectKey(uid)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (c *RedisCache) Set(ctx context.Context, uid, id int64) error {
	return c.client.Set(ctx, objectKey(uid), id, c.ttl).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "florbal:page:"

// Page is an upstream response kept in the page cache.
type Page struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// RedisCache handles caching and fast state storage
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// GetPage returns the cached page for key; ok is false on a miss.
func (rc *RedisCache) GetPage(ctx context.Context, key string) (page Page, ok bool, err error) {
	raw, err := rc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, err
	}

	if err := json.Unmarshal(raw, &page); err != nil {
		return Page{}, false, fmt.Errorf("failed to decode cached page: %w", err)
	}
	return page, true, nil
}

// SetPage stores page under key with TTL
func (rc *RedisCache) SetPage(ctx context.Context, key string, page Page, ttl time.Duration) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, pageKeyPrefix+key, data, ttl).Err()
}

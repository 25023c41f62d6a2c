package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"spacelink/pkg/model"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries our token, so an
// expired holder cannot free a lock someone else has since acquired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client      *redis.Client
	propertyTTL time.Duration
}

func NewRedisCache(client *redis.Client, propertyTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      client,
		propertyTTL: propertyTTL,
	}
}

func (c *RedisCache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (c *RedisCache) ReleaseLock(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, c.client, []string{lockKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// GetProperty returns nil, nil on a cache miss.
func (c *RedisCache) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	data, err := c.client.Get(ctx, propertyKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var property model.Property
	if err := json.Unmarshal(data, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (c *RedisCache) SetProperty(ctx context.Context, property *model.Property) error {
	payload, err := json.Marshal(property)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, propertyKey(property.ID), payload, c.propertyTTL).Err()
}

func (c *RedisCache) InvalidateProperty(ctx context.Context, id string) error {
	return c.client.Del(ctx, propertyKey(id)).Err()
}

func lockKey(key string) string {
	return "lock:" + key
}

func propertyKey(id string) string {
	return "cache:property:" + id
}

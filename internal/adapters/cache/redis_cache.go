package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/callsheet-pipeline/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a Redis implementation of the ClassificationCache
// interface. It is the backend to use when the pipeline is scaled
// horizontally, since all instances share one keyspace and Redis handles
// expiry itself.
type RedisCache struct {
	client    *redis.Client
	logger    *zap.Logger
	ttl       time.Duration
	keyPrefix string
}

// NewRedisCache creates a new Redis classification cache
func NewRedisCache(addr, password string, db int, logger *zap.Logger, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client:    client,
		logger:    logger,
		ttl:       ttl,
		keyPrefix: "classification:",
	}, nil
}

// Get retrieves a cached classification for a message
func (c *RedisCache) Get(ctx context.Context, messageID string) (*core.Classification, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+messageID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Error("Failed to query cache", zap.Error(err), zap.String("message_id", messageID))
		}
		return nil, false
	}

	var classification core.Classification
	if err := json.Unmarshal(data, &classification); err != nil {
		c.logger.Error("Failed to decode cached classification", zap.Error(err), zap.String("message_id", messageID))
		return nil, false
	}

	return &classification, true
}

// Set stores a classification for a message
func (c *RedisCache) Set(ctx context.Context, messageID string, classification core.Classification) {
	data, err := json.Marshal(classification)
	if err != nil {
		c.logger.Error("Failed to encode classification", zap.Error(err), zap.String("message_id", messageID))
		return
	}

	if err := c.client.Set(ctx, c.keyPrefix+messageID, data, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("message_id", messageID))
	}
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, messageID string) error {
	if err := c.client.Del(ctx, c.keyPrefix+messageID).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op for Redis, which expires keys on its own
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}

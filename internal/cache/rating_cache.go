package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/GitHackerz/ezgo-sub000/internal/config"
	"github.com/GitHackerz/ezgo-sub000/internal/models"
)

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RatingCache keeps rating summaries in redis. Redis errors never fail a
// request: reads fall through to the database and writes are dropped.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRatingCache creates a new RatingCache
func NewRatingCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RatingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RatingCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetSummary returns the cached summary for key, if any
func (c *RatingCache) GetSummary(ctx context.Context, key string) (*models.RatingSummary, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Rating cache read failed")
		return nil, false
	}

	var summary models.RatingSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding malformed rating cache entry")
		return nil, false
	}
	return &summary, true
}

// SetSummary stores a summary for the configured TTL
func (c *RatingCache) SetSummary(ctx context.Context, key string, summary models.RatingSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to encode rating summary")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Rating cache write failed")
	}
}

// Invalidate drops the given keys
func (c *RatingCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WithError(err).WithField("keys", keys).Warn("Rating cache invalidation failed")
	}
}

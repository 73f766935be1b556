package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appstorage "github.com/verone/backend/internal/application/storage"
	"github.com/verone/backend/internal/domain/storage"
)

// RedisMeterCache implements MeterCache using Redis.
// This is suitable for distributed deployments where multiple instances
// need to share computed usage results.
type RedisMeterCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisMeterCache creates a new Redis-backed meter cache.
func NewRedisMeterCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisMeterCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisMeterCache(client, "", ttl, logger), nil
}

// NewRedisMeterCacheWithClient creates a cache with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisMeterCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisMeterCache {
	return newRedisMeterCache(client, keyPrefix, ttl, logger)
}

func newRedisMeterCache(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisMeterCache {
	if keyPrefix == "" {
		keyPrefix = "metering:usage:"
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMeterCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger,
	}
}

// Get returns a cached weighted average result if present.
// Redis failures are treated as cache misses so metering falls back to
// recomputing from the event stream.
func (c *RedisMeterCache) Get(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID, period storage.Period) (*storage.WeightedAverageResult, bool) {
	key := c.key(ownerType, ownerID, period)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Failed to read meter cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var result storage.WeightedAverageResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("Failed to decode cached meter result", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return &result, true
}

// Set stores a computed weighted average result with the configured TTL.
func (c *RedisMeterCache) Set(ctx context.Context, ownerType storage.OwnerType, ownerID uuid.UUID, period storage.Period, result storage.WeightedAverageResult) {
	key := c.key(ownerType, ownerID, period)

	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("Failed to encode meter result", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write meter cache", zap.String("key", key), zap.Error(err))
	}
}

// key builds a deterministic cache key from the owner and period bounds.
func (c *RedisMeterCache) key(ownerType storage.OwnerType, ownerID uuid.UUID, period storage.Period) string {
	return fmt.Sprintf("%s%s:%s:%d:%d",
		c.keyPrefix,
		ownerType,
		ownerID,
		period.Start.UTC().Unix(),
		period.End.UTC().Unix(),
	)
}

// Close closes the Redis client
func (c *RedisMeterCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisMeterCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisMeterCache implements MeterCache
var _ appstorage.MeterCache = (*RedisMeterCache)(nil)

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eclat-salon/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedis returns a connected client, or nil when no address is configured
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// SlotCache keeps free-slot lists per staff member, date and duration.
// A nil client turns every call into a miss or a no-op.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSlotCache constructs a slot cache
func NewSlotCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SlotCache {
	return &SlotCache{client: client, ttl: ttl, logger: logger}
}

// Enabled reports whether a redis client is attached
func (c *SlotCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached slots; ok is false on a miss or a redis failure
func (c *SlotCache) Get(ctx context.Context, staffID uint, date string, duration int) ([]string, bool) {
	if !c.Enabled() {
		return nil, false
	}

	key := slotKey(staffID, date, duration)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("slot cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.logger.Warn("slot cache payload unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return slots, true
}

// Set stores slots under the configured TTL
func (c *SlotCache) Set(ctx context.Context, staffID uint, date string, duration int, slots []string) {
	if !c.Enabled() {
		return
	}

	key := slotKey(staffID, date, duration)
	payload, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops the entries of one date, or of every date when date is empty
func (c *SlotCache) Invalidate(ctx context.Context, staffID uint, date string) {
	if !c.Enabled() {
		return
	}

	pattern := invalidationPattern(staffID, date)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("slot cache delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("slot cache scan failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// Close releases the redis connection if present
func (c *SlotCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func slotKey(staffID uint, date string, duration int) string {
	return fmt.Sprintf("slots:%d:%s:%d", staffID, date, duration)
}

func invalidationPattern(staffID uint, date string) string {
	if date == "" {
		return fmt.Sprintf("slots:%d:*", staffID)
	}
	return fmt.Sprintf("slots:%d:%s:*", staffID, date)
}

// Package cache implements the shared developer entity cache: an
// in-process LRU in front of Redis, keyed by both the remote developer
// ID and the developer email. The cache is read-mostly from the rest of
// the service's perspective, with point reads and point evictions only.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gatewaykit/portalsync/pkg/edge"
)

// EntityCache is the read/evict surface consumed by the entity and sync
// layers
type EntityCache interface {
	GetByUUID(ctx context.Context, uuid string) (*edge.Developer, bool)
	GetByEmail(ctx context.Context, email string) (*edge.Developer, bool)
	Put(ctx context.Context, dev *edge.Developer)
	Remove(ctx context.Context, uuid string) error
	RemoveAll(ctx context.Context, uuids []string) error
	RemoveEmails(ctx context.Context, emails []string) error
}

// Recorder receives cache hit/miss/eviction observations. A nil
// Recorder disables recording.
type Recorder interface {
	RecordCacheHit(tier string)
	RecordCacheMiss(tier string)
	RecordCacheEviction(tier string)
}

// Config controls cache sizing and expiry
type Config struct {
	TTL       time.Duration
	L1Entries int
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	return Config{
		TTL:       15 * time.Minute,
		L1Entries: 1024,
	}
}

// RedisCache is a two-tier developer cache: expirable LRU in front of
// Redis
type RedisCache struct {
	redis    *redis.Client
	l1       *lru.LRU[string, *edge.Developer]
	ttl      time.Duration
	recorder Recorder
}

// NewRedisCache creates a cache over an existing Redis client
func NewRedisCache(client *redis.Client, cfg Config, recorder Recorder) (*RedisCache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.L1Entries <= 0 {
		cfg.L1Entries = DefaultConfig().L1Entries
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		redis:    client,
		l1:       lru.NewLRU[string, *edge.Developer](cfg.L1Entries, nil, cfg.TTL),
		ttl:      cfg.TTL,
		recorder: recorder,
	}, nil
}

// Close closes the underlying Redis connection
func (c *RedisCache) Close() error {
	return c.redis.Close()
}

func uuidKey(uuid string) string {
	return "developer:uuid:" + uuid
}

func emailKey(email string) string {
	return "developer:email:" + email
}

// GetByUUID returns the cached developer for a remote developer ID
func (c *RedisCache) GetByUUID(ctx context.Context, uuid string) (*edge.Developer, bool) {
	return c.get(ctx, uuidKey(uuid))
}

// GetByEmail returns the cached developer for an email address
func (c *RedisCache) GetByEmail(ctx context.Context, email string) (*edge.Developer, bool) {
	return c.get(ctx, emailKey(email))
}

// get returns a copy of the cached record. The retained entry is never
// handed out: callers own their representation exclusively, so their
// mutations cannot leak into other requests through the cache.
func (c *RedisCache) get(ctx context.Context, key string) (*edge.Developer, bool) {
	if dev, ok := c.l1.Get(key); ok {
		c.recordHit("l1")
		return dev.Clone(), true
	}
	c.recordMiss("l1")

	cached, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		c.recordMiss("redis")
		return nil, false
	}

	var dev edge.Developer
	if err := json.Unmarshal([]byte(cached), &dev); err != nil {
		// Corrupt entry, drop it
		c.redis.Del(ctx, key)
		c.recordMiss("redis")
		return nil, false
	}

	c.recordHit("redis")
	c.l1.Add(key, &dev)
	return dev.Clone(), true
}

// Put stores a developer under both its UUID and email keys
func (c *RedisCache) Put(ctx context.Context, dev *edge.Developer) {
	if dev == nil || dev.DeveloperID == "" {
		return
	}

	data, err := json.Marshal(dev)
	if err != nil {
		return
	}

	// Store a private copy so later mutations by the caller do not
	// rewrite the cached entry.
	stored := dev.Clone()

	keys := []string{uuidKey(dev.DeveloperID)}
	if dev.Email != "" {
		keys = append(keys, emailKey(dev.Email))
	}
	for _, key := range keys {
		c.l1.Add(key, stored)
		c.redis.Set(ctx, key, data, c.ttl)
	}
}

// Remove evicts the entry for a single developer ID, along with the
// email-keyed form if the entry is still readable
func (c *RedisCache) Remove(ctx context.Context, uuid string) error {
	return c.RemoveAll(ctx, []string{uuid})
}

// RemoveAll evicts entries for a batch of developer IDs. Entries that
// can still be read are also evicted under their email key.
func (c *RedisCache) RemoveAll(ctx context.Context, uuids []string) error {
	keys := make([]string, 0, len(uuids)*2)
	for _, uuid := range uuids {
		key := uuidKey(uuid)
		if dev, ok := c.get(ctx, key); ok && dev.Email != "" {
			keys = append(keys, emailKey(dev.Email))
		}
		keys = append(keys, key)
	}
	return c.evict(ctx, keys)
}

// RemoveEmails evicts entries for a batch of developer emails. Entries
// that can still be read are also evicted under their UUID key.
func (c *RedisCache) RemoveEmails(ctx context.Context, emails []string) error {
	keys := make([]string, 0, len(emails)*2)
	for _, email := range emails {
		key := emailKey(email)
		if dev, ok := c.get(ctx, key); ok && dev.DeveloperID != "" {
			keys = append(keys, uuidKey(dev.DeveloperID))
		}
		keys = append(keys, key)
	}
	return c.evict(ctx, keys)
}

func (c *RedisCache) evict(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, key := range keys {
		c.l1.Remove(key)
		c.recordEviction("l1")
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to evict cache entries: %w", err)
	}
	for range keys {
		c.recordEviction("redis")
	}
	return nil
}

func (c *RedisCache) recordHit(tier string) {
	if c.recorder != nil {
		c.recorder.RecordCacheHit(tier)
	}
}

func (c *RedisCache) recordMiss(tier string) {
	if c.recorder != nil {
		c.recorder.RecordCacheMiss(tier)
	}
}

func (c *RedisCache) recordEviction(tier string) {
	if c.recorder != nil {
		c.recorder.RecordCacheEviction(tier)
	}
}

package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JoelJacobStephen/litxplore/log"
)

// Cache is the artifact cache on a redis backend. Every failure of the
// backing store is absorbed here: Get degrades to a miss and Put to a
// no-op, so callers can never fail because the cache is down.
type Cache struct {
	client *redis.Client
	logger log.Logger
}

func NewCache(addr, password string, db int, logger log.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Cache{client: client, logger: logger}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warnf("cache read failed for %s: %v", key, err)
		return nil, false
	}
	return data, true
}

func (c *Cache) Put(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warnf("cache write failed for %s: %v", key, err)
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// ArtifactKey composes the versioned cache key for a derived artifact:
// artifact:{hash}:{schema}:{model}[:{subkind}]. Bumping the schema version
// or model tag lands on a fresh key, which is the only invalidation
// mechanism.
func ArtifactKey(paperHash, schemaVersion, modelTag string, subkind ...string) string {
	parts := append([]string{"artifact", paperHash, schemaVersion, modelTag}, subkind...)
	return strings.Join(parts, ":")
}

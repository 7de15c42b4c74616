// Package store – view cache.
//
// This file implements the Redis read-through cache for the precomputed
// dashboard views. Values are stored as JSON under a short TTL. The cache is
// strictly best-effort: any Redis failure is logged at debug/warn level and
// treated as a miss so the SQL path always remains available.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ViewCache caches serialized view rows in Redis with a fixed TTL.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache wraps an existing Redis client. ttl bounds staleness between
// an insert and the next recompute.
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{client: client, ttl: ttl}
}

// get loads key into dest, reporting whether a usable value was found.
// Misses and failures both report false; failures are additionally logged.
func (c *ViewCache) get(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("view cache: read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("view cache: corrupt entry")
		return false
	}
	return true
}

// set stores v under key. Failures are logged and swallowed.
func (c *ViewCache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("view cache: marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("view cache: write failed")
	}
}

// drop evicts the given keys.
func (c *ViewCache) drop(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

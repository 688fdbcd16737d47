// Package cache holds the Redis-backed identity cache the auth
// middleware consults after verifying a token, so that every
// authenticated request does not hit Postgres to confirm the token's
// subject still exists.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	identityKeyPrefix = "auth:user:"
	// identityTTL bounds how long a deleted user's token keeps passing
	// the existence check in the auth middleware.
	identityTTL = 5 * time.Minute
)

// Cache is the Redis-backed identity cache.
type Cache struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection. The pool is kept
// small: the auth middleware is the only caller and issues at most one
// GET and one SET per authenticated request.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.PoolSize = 5
	opt.MinIdleConns = 1
	opt.PoolTimeout = 2 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{rdb: rdb}, nil
}

// Identity is the slice of a user the auth middleware needs after a
// token has been verified.
type Identity struct {
	UserID   string `json:"user_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func identityKey(userID string) string {
	return identityKeyPrefix + userID
}

// GetIdentity retrieves a cached identity by user ID. A missing key and
// a corrupted entry both read as a miss, never as an error: the caller
// falls back to the store either way.
func (c *Cache) GetIdentity(ctx context.Context, userID string) (*Identity, error) {
	data, err := c.rdb.Get(ctx, identityKey(userID)).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, nil //nolint:nilerr
	}

	return &identity, nil
}

// SetIdentity caches an identity under its user ID for identityTTL.
func (c *Cache) SetIdentity(ctx context.Context, identity *Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.rdb.Set(ctx, identityKey(identity.UserID), data, identityTTL).Err()
}

// DeleteIdentity evicts a cached identity.
func (c *Cache) DeleteIdentity(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, identityKey(userID)).Err()
}

// Ping reports Redis connectivity for the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

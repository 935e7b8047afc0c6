package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache is a read-through cache for profile lookups.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	Set(ctx context.Context, u *User) error
}

// ProfileCache caches user profiles in Redis. Users are immutable after
// registration, so entries only ever expire; there is no invalidation path.
// The cached JSON goes through the User marshaller, which strips the
// password hash.
type ProfileCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProfileCache returns a new ProfileCache.
func NewProfileCache(rdb *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

func profileKey(id uuid.UUID) string {
	return fmt.Sprintf("profile:%s", id.String())
}

// Get returns the cached profile or nil on miss.
func (c *ProfileCache) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	b, err := c.rdb.Get(ctx, profileKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Set stores the profile in cache.
func (c *ProfileCache) Set(ctx context.Context, u *User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, profileKey(u.ID), b, c.ttl).Err()
}

package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/cuervo/internal/application/service"
	"github.com/khoahotran/cuervo/internal/domain/profile"
	"github.com/khoahotran/cuervo/internal/domain/session"
)

func PublicProfileKey(ownerID uuid.UUID) string {
	return "public:profile:" + ownerID.String()
}

func updateLockKey(profileID uuid.UUID) string {
	return "profile:update:lock:" + profileID.String()
}

func revokedTokenKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}

type redisPublicCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPublicCache(rdb *redis.Client, ttl time.Duration) service.PublicProfileCache {
	return &redisPublicCache{rdb: rdb, ttl: ttl}
}

func (c *redisPublicCache) Get(ctx context.Context, ownerID uuid.UUID) (*profile.Profile, bool, error) {
	raw, err := c.rdb.Get(ctx, PublicProfileKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read public profile cache: %w", err)
	}

	var p profile.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached public profile: %w", err)
	}
	return &p, true, nil
}

func (c *redisPublicCache) Set(ctx context.Context, ownerID uuid.UUID, p *profile.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode public profile: %w", err)
	}
	if err := c.rdb.Set(ctx, PublicProfileKey(ownerID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write public profile cache: %w", err)
	}
	return nil
}

func (c *redisPublicCache) Invalidate(ctx context.Context, ownerID uuid.UUID) error {
	if err := c.rdb.Del(ctx, PublicProfileKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate public profile cache: %w", err)
	}
	return nil
}

type redisUpdateGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisUpdateGuard returns a guard whose locks expire after ttl, so a
// crashed request cannot block a profile forever.
func NewRedisUpdateGuard(rdb *redis.Client, ttl time.Duration) service.UpdateGuard {
	return &redisUpdateGuard{rdb: rdb, ttl: ttl}
}

func (g *redisUpdateGuard) Acquire(ctx context.Context, profileID uuid.UUID) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, updateLockKey(profileID), time.Now().UTC().Format(time.RFC3339Nano), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire update lock: %w", err)
	}
	return ok, nil
}

func (g *redisUpdateGuard) Release(ctx context.Context, profileID uuid.UUID) error {
	if err := g.rdb.Del(ctx, updateLockKey(profileID)).Err(); err != nil {
		return fmt.Errorf("failed to release update lock: %w", err)
	}
	return nil
}

type redisRevocations struct {
	rdb *redis.Client
}

func NewRedisRevocations(rdb *redis.Client) session.Revocations {
	return &redisRevocations{rdb: rdb}
}

func (r *redisRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, revokedTokenKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *redisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshDenylist records revoked refresh token ids until their natural expiry.
// Rotation and logout both revoke the presented token's jti.
type RefreshDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRefreshDenylist struct {
	client *redis.Client
}

// NewRefreshDenylist returns a Redis-backed implementation.
func NewRefreshDenylist(client *redis.Client) RefreshDenylist {
	return &redisRefreshDenylist{client: client}
}

func (d *redisRefreshDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.SetEx(ctx, denyKey(tokenID), "revoked", ttl).Err()
}

func (d *redisRefreshDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, denyKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func denyKey(tokenID string) string {
	return "revoked_refresh_token:" + tokenID
}

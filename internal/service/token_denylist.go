package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist records access tokens revoked before they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisTokenDenylist struct {
	redisClient *redis.Client
}

func NewTokenDenylist(redisClient *redis.Client) TokenDenylist {
	return &redisTokenDenylist{redisClient: redisClient}
}

func revokedTokenKey(tokenID string) string {
	return "revoked_token:" + tokenID
}

// Revoke keeps the entry only as long as the token could still be presented.
func (d *redisTokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.redisClient.Set(ctx, revokedTokenKey(tokenID), "1", ttl).Err()
}

func (d *redisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.redisClient.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

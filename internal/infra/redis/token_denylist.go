package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist is a Redis-backed implementation of app.TokenDenylist.
// Each revoked token id is a key that expires with the token:
//
//	SET auth:revoked:{tokenID} 1 PX {ms until expiry}
//
// so every replica sharing the Redis instance sees a logout immediately.
type TokenDenylist struct {
	client *redis.Client
	clock  func() time.Time
}

func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client, clock: time.Now}
}

func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.clock())
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.key(tokenID), "1", ttl).Err()
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *TokenDenylist) key(tokenID string) string {
	return "auth:revoked:" + tokenID
}

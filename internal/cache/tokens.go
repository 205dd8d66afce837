package cache

import (
	"context"
	"time"
)

// BlacklistKey is the key marking a revoked token id.
func BlacklistKey(jti string) string {
	return "blacklist:" + jti
}

// RevokeToken marks jti as revoked until ttl elapses. It is a no-op without Redis.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return client.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether jti was revoked. Redis errors are treated as not revoked.
func IsTokenRevoked(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, BlacklistKey(jti)).Result()
	return err == nil && n > 0
}

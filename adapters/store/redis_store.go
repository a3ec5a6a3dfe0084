package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/rangda/ports"
)

// RedisTokenStore is a Redis implementation of ports.TokenStore for
// multi-instance deployments.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenStore creates a Redis-backed token store.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: "rangda:revoked:",
	}
}

// key hashes the token so live credentials never sit in Redis.
func (s *RedisTokenStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

// InvalidateToken marks a token as revoked in Redis. A ttl of zero keeps
// the entry without expiration.
func (s *RedisTokenStore) InvalidateToken(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// IsTokenInvalidated checks whether a token is revoked in Redis.
func (s *RedisTokenStore) IsTokenInvalidated(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

var _ ports.TokenStore = (*RedisTokenStore)(nil)

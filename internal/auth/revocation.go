package auth

import (
	"context"
	"time"

	"chirp/internal/cache"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records revoked token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisRevocationStore keeps revoked jti values in Redis with a TTL.
type RedisRevocationStore struct {
	rdb *redis.Client
}

// NewRedisRevocationStore returns a store backed by rdb. A nil client yields nil
// so callers fall back to stateless verification.
func NewRedisRevocationStore(rdb *redis.Client) RevocationStore {
	if rdb == nil {
		return nil
	}
	return &RedisRevocationStore{rdb: rdb}
}

// Revoke stores tokenID until ttl elapses.
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, cache.RevokedTokenKey(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether tokenID has been revoked.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, cache.RevokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

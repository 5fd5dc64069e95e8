package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers revoked token IDs until they would have expired
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// NopRevocationStore never revokes anything. Tokens stay valid until expiry.
type NopRevocationStore struct{}

func (NopRevocationStore) Revoke(context.Context, string, time.Duration) error { return nil }

func (NopRevocationStore) IsRevoked(context.Context, string) (bool, error) { return false, nil }

const revokedKeyPrefix = "jwt:revoked:"

// RedisRevocationStore keeps revoked token IDs in Redis with a TTL
type RedisRevocationStore struct {
	client redis.UniversalClient
}

// NewRedisRevocationStore wraps an existing Redis client
func NewRedisRevocationStore(client redis.UniversalClient) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.client.Get(ctx, revokedKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

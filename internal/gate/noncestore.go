package gate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harborpay/scanpay-backend/pkg/redis"
)

// RedisNonceStore burns nonces via an atomic SetNX against the shared cache.
type RedisNonceStore struct {
	client *redis.Client
}

// NewRedisNonceStore wires the nonce registry on top of the redis client.
func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{client: client}
}

// Burn marks the (merchant, nonce) pair as consumed. It returns false when the
// pair was already marked within the TTL.
func (s *RedisNonceStore) Burn(ctx context.Context, merchantID uuid.UUID, nonce string, ttl time.Duration) (bool, error) {
	key := s.client.NonceKey(merchantID.String(), nonce)
	return s.client.SetNX(ctx, key, "1", ttl)
}

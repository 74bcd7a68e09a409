package observations

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/harborpay/scanpay-backend/pkg/redis"
)

// RedisDedupStore keeps processed-observation marks in the shared cache.
// Marks never expire: a provider txn id settles exactly one order, ever.
type RedisDedupStore struct {
	client *redis.Client
}

// NewRedisDedupStore wires the dedup registry on top of the redis client.
func NewRedisDedupStore(client *redis.Client) *RedisDedupStore {
	return &RedisDedupStore{client: client}
}

// Seen reports whether the provider txn id already carries a processed mark.
func (s *RedisDedupStore) Seen(ctx context.Context, providerTxnID string) (bool, error) {
	_, err := s.client.Get(ctx, s.client.DedupKey(providerTxnID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Mark records the provider txn id as fully processed.
func (s *RedisDedupStore) Mark(ctx context.Context, providerTxnID string) error {
	_, err := s.client.SetNX(ctx, s.client.DedupKey(providerTxnID), "1", 0)
	return err
}

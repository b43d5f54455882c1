package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// freqKeyPrefix mirrors the owner_search_freq browser storage key.
const freqKeyPrefix = "owner_search_freq:"

// FrequencyStore implements repository.FrequencyStore as a Redis hash per
// session: field = OwnerRecord key, value = selection count.
type FrequencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFrequencyStore creates a new Redis-backed frequency store.
func NewFrequencyStore(client *redis.Client, ttl time.Duration) *FrequencyStore {
	return &FrequencyStore{
		client: client,
		ttl:    ttl,
	}
}

// Incr increments the counter for key and refreshes the hash TTL.
func (s *FrequencyStore) Incr(ctx context.Context, sessionID, key string) (int64, error) {
	hashKey := freqKeyPrefix + sessionID

	n, err := s.client.HIncrBy(ctx, hashKey, key, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hincrby frequency: %w", err)
	}

	// Best effort: the counter is already bumped, a lost TTL refresh only
	// means earlier expiry.
	_ = s.client.Expire(ctx, hashKey, s.ttl).Err()

	return n, nil
}

// All returns the complete frequency table for a session. A missing hash is
// an empty table.
func (s *FrequencyStore) All(ctx context.Context, sessionID string) (map[string]int64, error) {
	fields, err := s.client.HGetAll(ctx, freqKeyPrefix+sessionID).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall frequency: %w", err)
	}

	table := make(map[string]int64, len(fields))
	for k, v := range fields {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			continue
		}
		table[k] = n
	}
	return table, nil
}
